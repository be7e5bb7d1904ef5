package app

import "github.com/jaminalder/dots-and-boxes/internal/domain"

// Event is emitted by a Session after each state change.
type Event interface {
    Name() string
}

// Listener receives session events in emission order.
type Listener func(Event)

type LineClaimed struct {
    Line   domain.Line
    Player domain.Player
}

type CompletedBox struct {
    Box    domain.Box
    Player domain.Player
}

type BoxesCompleted struct {
    Boxes []CompletedBox
}

type TurnChanged struct {
    Player domain.Player
}

type GameOver struct {
    Result Result
}

type BoardReset struct {
    Rows int
    Cols int
}

type BoardReflowed struct {
    Rows int
    Cols int
}

func (LineClaimed) Name() string    { return "lineClaimed" }
func (BoxesCompleted) Name() string { return "boxesCompleted" }
func (TurnChanged) Name() string    { return "turnChanged" }
func (GameOver) Name() string       { return "gameOver" }
func (BoardReset) Name() string     { return "boardReset" }
func (BoardReflowed) Name() string  { return "boardReflowed" }

// Result of a finished game. Winner is None on a draw.
type Result struct {
    Winner domain.Player
}

func (r Result) Draw() bool { return r.Winner == domain.None }

func resultOf(scores [3]int) Result {
    switch {
    case scores[domain.Player1] > scores[domain.Player2]:
        return Result{Winner: domain.Player1}
    case scores[domain.Player2] > scores[domain.Player1]:
        return Result{Winner: domain.Player2}
    }
    return Result{}
}
