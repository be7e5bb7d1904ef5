package domain

import (
    "errors"
    "fmt"
)

// Player identifies who owns a line or box. None means unclaimed.
type Player uint8

const (
    None Player = iota
    Player1
    Player2
)

// Valid reports whether p is one of the two players.
func (p Player) Valid() bool { return p == Player1 || p == Player2 }

// Opponent returns the other player.
func (p Player) Opponent() Player {
    if p == Player1 {
        return Player2
    }
    return Player1
}

// Errors returned by ledger operations.
var (
    ErrInvalidMove    = errors.New("invalid move")
    ErrAlreadyClaimed = errors.New("line already claimed")
    ErrNotClaimed     = errors.New("line not claimed")
)

// Ledger records which player claimed each line of a grid.
// It is not safe for concurrent use; the owning session serializes access.
type Ledger struct {
    grid  Grid
    lines map[Line]Player
}

// NewLedger returns an empty ledger for g.
func NewLedger(g Grid) *Ledger {
    return &Ledger{grid: g, lines: make(map[Line]Player, g.TotalLines())}
}

func (l *Ledger) Grid() Grid { return l.grid }

// Len is the number of claimed lines.
func (l *Ledger) Len() int { return len(l.lines) }

// Full reports whether every line on the grid is claimed.
func (l *Ledger) Full() bool { return len(l.lines) >= l.grid.TotalLines() }

// Owner returns the player that claimed line, or None.
func (l *Ledger) Owner(line Line) Player { return l.lines[line] }

// Claimed reports whether line is present.
func (l *Ledger) Claimed(line Line) bool {
    _, ok := l.lines[line]
    return ok
}

// Claim records p as owner of line and returns the boxes this claim completed.
// A box is reported only when line is its fourth side, so each box is
// reported once per game.
func (l *Ledger) Claim(line Line, p Player) ([]Box, error) {
    if !l.grid.IsValidLine(line) {
        return nil, fmt.Errorf("%w: %s outside %dx%d", ErrInvalidMove, line, l.grid.Rows, l.grid.Cols)
    }
    if !p.Valid() {
        return nil, fmt.Errorf("%w: player %d", ErrInvalidMove, p)
    }
    if _, ok := l.lines[line]; ok {
        return nil, fmt.Errorf("%w: %s", ErrAlreadyClaimed, line)
    }
    l.lines[line] = p

    var completed []Box
    for _, b := range l.grid.AdjacentBoxes(line) {
        if l.CountClaimedSides(b) == 4 {
            completed = append(completed, b)
        }
    }
    return completed, nil
}

// Unclaim removes line from the ledger.
func (l *Ledger) Unclaim(line Line) error {
    if _, ok := l.lines[line]; !ok {
        return fmt.Errorf("%w: %s", ErrNotClaimed, line)
    }
    delete(l.lines, line)
    return nil
}

// CountClaimedSides counts the claimed bounding lines of b (0..4).
func (l *Ledger) CountClaimedSides(b Box) int {
    n := 0
    for _, s := range l.grid.Sides(b) {
        if _, ok := l.lines[s]; ok {
            n++
        }
    }
    return n
}

// SidesAfter counts b's claimed sides as if line were also claimed,
// without touching the ledger.
func (l *Ledger) SidesAfter(b Box, line Line) int {
    n := l.CountClaimedSides(b)
    if l.Claimed(line) {
        return n
    }
    for _, s := range l.grid.Sides(b) {
        if s == line {
            return n + 1
        }
    }
    return n
}

// Unclaimed lists free lines in Grid.Lines order.
func (l *Ledger) Unclaimed() []Line {
    all := l.grid.Lines()
    out := make([]Line, 0, len(all)-len(l.lines))
    for _, ln := range all {
        if _, ok := l.lines[ln]; !ok {
            out = append(out, ln)
        }
    }
    return out
}

// Entries returns a copy of the line to owner mapping.
func (l *Ledger) Entries() map[Line]Player {
    out := make(map[Line]Player, len(l.lines))
    for k, v := range l.lines {
        out[k] = v
    }
    return out
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
    return &Ledger{grid: l.grid, lines: l.Entries()}
}

// Reflow transposes every claimed line into a ledger for grid to.
// Lines that fall outside to are dropped and returned.
func (l *Ledger) Reflow(to Grid) (*Ledger, []Line) {
    out := NewLedger(to)
    var dropped []Line
    for _, ln := range l.grid.Lines() {
        p, ok := l.lines[ln]
        if !ok {
            continue
        }
        t := ln.Transpose()
        if !to.IsValidLine(t) {
            dropped = append(dropped, ln)
            continue
        }
        out.lines[t] = p
    }
    return out, dropped
}
