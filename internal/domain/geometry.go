package domain

import (
    "errors"
    "fmt"
    "strconv"
    "strings"
)

// Orientation tells whether a line runs between two dots of the same row
// (Horizontal) or of the same column (Vertical).
type Orientation uint8

const (
    Horizontal Orientation = iota
    Vertical
)

func (o Orientation) String() string {
    if o == Vertical {
        return "v"
    }
    return "h"
}

// Line identifies a claimable edge. It is comparable and used directly as a map key.
type Line struct {
    Orientation Orientation
    Row         int
    Col         int
}

// H returns the horizontal line at (r, c).
func H(r, c int) Line { return Line{Orientation: Horizontal, Row: r, Col: c} }

// V returns the vertical line at (r, c).
func V(r, c int) Line { return Line{Orientation: Vertical, Row: r, Col: c} }

// String renders the line as "h-r-c" or "v-r-c".
func (l Line) String() string {
    return fmt.Sprintf("%s-%d-%d", l.Orientation, l.Row, l.Col)
}

// Transpose swaps row and column and flips the orientation.
func (l Line) Transpose() Line {
    o := Horizontal
    if l.Orientation == Horizontal {
        o = Vertical
    }
    return Line{Orientation: o, Row: l.Col, Col: l.Row}
}

// ParseLine reads the "h-r-c" / "v-r-c" form produced by String.
func ParseLine(s string) (Line, error) {
    parts := strings.Split(s, "-")
    if len(parts) != 3 {
        return Line{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
    }
    var o Orientation
    switch parts[0] {
    case "h":
        o = Horizontal
    case "v":
        o = Vertical
    default:
        return Line{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
    }
    r, err := strconv.Atoi(parts[1])
    if err != nil {
        return Line{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
    }
    c, err := strconv.Atoi(parts[2])
    if err != nil {
        return Line{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
    }
    return Line{Orientation: o, Row: r, Col: c}, nil
}

// Box identifies a unit cell.
type Box struct {
    Row int
    Col int
}

func (b Box) Transpose() Box { return Box{Row: b.Col, Col: b.Row} }

func (b Box) String() string { return fmt.Sprintf("box-%d-%d", b.Row, b.Col) }

// ErrInvalidGrid is returned for non-positive grid dimensions.
var ErrInvalidGrid = errors.New("invalid grid dimensions")

// Grid holds the board dimensions in boxes. All methods are pure.
type Grid struct {
    Rows int
    Cols int
}

// NewGrid validates and returns a grid of rows x cols boxes.
func NewGrid(rows, cols int) (Grid, error) {
    if rows < 1 || cols < 1 {
        return Grid{}, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, cols)
    }
    return Grid{Rows: rows, Cols: cols}, nil
}

// TotalBoxes is rows*cols.
func (g Grid) TotalBoxes() int { return g.Rows * g.Cols }

// TotalLines is the number of claimable lines.
func (g Grid) TotalLines() int { return (g.Rows+1)*g.Cols + g.Rows*(g.Cols+1) }

// IsValidLine reports whether l lies on the grid.
func (g Grid) IsValidLine(l Line) bool {
    switch l.Orientation {
    case Horizontal:
        return l.Row >= 0 && l.Row <= g.Rows && l.Col >= 0 && l.Col < g.Cols
    case Vertical:
        return l.Row >= 0 && l.Row < g.Rows && l.Col >= 0 && l.Col <= g.Cols
    }
    return false
}

// IsValidBox reports whether b lies on the grid.
func (g Grid) IsValidBox(b Box) bool {
    return b.Row >= 0 && b.Row < g.Rows && b.Col >= 0 && b.Col < g.Cols
}

// AdjacentBoxes returns the boxes bordered by l: one on the outer edge, two inside.
// An invalid line borders nothing.
func (g Grid) AdjacentBoxes(l Line) []Box {
    if !g.IsValidLine(l) {
        return nil
    }
    out := make([]Box, 0, 2)
    if l.Orientation == Horizontal {
        // box above, box below
        if l.Row > 0 {
            out = append(out, Box{Row: l.Row - 1, Col: l.Col})
        }
        if l.Row < g.Rows {
            out = append(out, Box{Row: l.Row, Col: l.Col})
        }
        return out
    }
    // box left, box right
    if l.Col > 0 {
        out = append(out, Box{Row: l.Row, Col: l.Col - 1})
    }
    if l.Col < g.Cols {
        out = append(out, Box{Row: l.Row, Col: l.Col})
    }
    return out
}

// Sides returns the four bounding lines of b: top, bottom, left, right.
func (g Grid) Sides(b Box) [4]Line {
    return [4]Line{
        H(b.Row, b.Col),
        H(b.Row+1, b.Col),
        V(b.Row, b.Col),
        V(b.Row, b.Col+1),
    }
}

// Lines enumerates every line: horizontals row-major, then verticals row-major.
// The order is relied upon for deterministic tie-breaking.
func (g Grid) Lines() []Line {
    out := make([]Line, 0, g.TotalLines())
    for r := 0; r <= g.Rows; r++ {
        for c := 0; c < g.Cols; c++ {
            out = append(out, H(r, c))
        }
    }
    for r := 0; r < g.Rows; r++ {
        for c := 0; c <= g.Cols; c++ {
            out = append(out, V(r, c))
        }
    }
    return out
}

// Transpose swaps rows and cols.
func (g Grid) Transpose() Grid { return Grid{Rows: g.Cols, Cols: g.Rows} }
