package app

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/jaminalder/dots-and-boxes/internal/ai"
)

// Config holds per-session tunables.
type Config struct {
    Rows          int
    Cols          int
    ComputerDelay time.Duration // visible "thinking" pause before a computer move
    StartLock     time.Duration // input lock after a game starts
    Seed          int64         // 0 seeds from the clock
}

// DefaultConfig returns the landscape 6x9 board with the usual delays.
func DefaultConfig() Config {
    return Config{
        Rows:          6,
        Cols:          9,
        ComputerDelay: 500 * time.Millisecond,
        StartLock:     400 * time.Millisecond,
    }
}

// Mode is either player vs player or player vs computer.
type Mode uint8

const (
    PvP Mode = iota
    PvC
)

func (m Mode) String() string {
    if m == PvC {
        return "pvc"
    }
    return "pvp"
}

var ErrUnknownMode = errors.New("unknown game mode")

// ParseMode maps "pvp" and "pvc".
func ParseMode(s string) (Mode, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "pvp", "":
        return PvP, nil
    case "pvc":
        return PvC, nil
    }
    return PvP, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Default player names.
const (
    DefaultPlayer1 = "Player 1"
    DefaultPlayer2 = "Player 2"
    ComputerName   = "Computer"
)

// Settings survive new games within a session.
type Settings struct {
    Mode       Mode
    Difficulty ai.Difficulty
    Player1    string
    Player2    string
}

// normalized fills empty names; the computer always plays as player 2.
func (st Settings) normalized() Settings {
    st.Player1 = strings.TrimSpace(st.Player1)
    st.Player2 = strings.TrimSpace(st.Player2)
    if st.Player1 == "" {
        st.Player1 = DefaultPlayer1
    }
    if st.Mode == PvC {
        st.Player2 = ComputerName
    } else if st.Player2 == "" {
        st.Player2 = DefaultPlayer2
    }
    return st
}
