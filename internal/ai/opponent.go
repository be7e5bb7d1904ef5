package ai

import (
    "errors"
    "fmt"
    "math/rand"
    "strings"

    "github.com/jaminalder/dots-and-boxes/internal/domain"
)

// Difficulty selects the move policy.
type Difficulty uint8

const (
    Easy Difficulty = iota
    Medium
    Hard
)

func (d Difficulty) String() string {
    switch d {
    case Medium:
        return "medium"
    case Hard:
        return "hard"
    default:
        return "easy"
    }
}

// Errors returned by the opponent.
var (
    ErrNoMovesAvailable  = errors.New("no moves available")
    ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// ParseDifficulty maps "easy", "medium" and "hard" (any case).
func ParseDifficulty(s string) (Difficulty, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "easy":
        return Easy, nil
    case "medium":
        return Medium, nil
    case "hard":
        return Hard, nil
    }
    return Easy, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Opponent picks moves for the computer player. It only reads the ledger.
type Opponent struct {
    rng *rand.Rand
}

// New returns an opponent drawing random choices from src.
func New(src rand.Source) *Opponent {
    return &Opponent{rng: rand.New(src)}
}

// ChooseMove returns the line the computer claims for p.
//
// Every tier first takes the first line (in enumeration order) that completes
// a box. Otherwise easy picks any free line; medium picks a random safe line,
// falling back to any free line; hard picks a random safe line, falling back
// to the line that hands the fewest boxes to the opponent.
func (o *Opponent) ChooseMove(l *domain.Ledger, d Difficulty, p domain.Player) (domain.Line, error) {
    if !p.Valid() {
        return domain.Line{}, fmt.Errorf("%w: player %d", domain.ErrInvalidMove, p)
    }
    moves := l.Unclaimed()
    if len(moves) == 0 {
        return domain.Line{}, ErrNoMovesAvailable
    }
    if m, ok := completingMove(l, moves); ok {
        return m, nil
    }
    if d == Easy {
        return o.pick(moves), nil
    }
    safe := safeMoves(l, moves)
    if len(safe) > 0 {
        return o.pick(safe), nil
    }
    if d == Medium {
        return o.pick(moves), nil
    }
    return leastGiveaway(l, moves), nil
}

func (o *Opponent) pick(moves []domain.Line) domain.Line {
    return moves[o.rng.Intn(len(moves))]
}

func completingMove(l *domain.Ledger, moves []domain.Line) (domain.Line, bool) {
    g := l.Grid()
    for _, m := range moves {
        for _, b := range g.AdjacentBoxes(m) {
            if l.SidesAfter(b, m) == 4 {
                return m, true
            }
        }
    }
    return domain.Line{}, false
}

// givenBoxes counts the boxes next to m left with exactly three sides after m.
func givenBoxes(l *domain.Ledger, m domain.Line) int {
    n := 0
    for _, b := range l.Grid().AdjacentBoxes(m) {
        if l.SidesAfter(b, m) == 3 {
            n++
        }
    }
    return n
}

func safeMoves(l *domain.Ledger, moves []domain.Line) []domain.Line {
    var out []domain.Line
    for _, m := range moves {
        if givenBoxes(l, m) == 0 {
            out = append(out, m)
        }
    }
    return out
}

// leastGiveaway keeps the first move found on ties.
func leastGiveaway(l *domain.Ledger, moves []domain.Line) domain.Line {
    best := moves[0]
    fewest := givenBoxes(l, best)
    for _, m := range moves[1:] {
        if n := givenBoxes(l, m); n < fewest {
            best, fewest = m, n
        }
    }
    return best
}
