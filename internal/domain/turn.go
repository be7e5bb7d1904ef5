package domain

// Turn tracks whose move it is. Completing a box earns another move.
type Turn struct {
    current Player
}

// NewTurn starts with Player1 to move.
func NewTurn() Turn { return Turn{current: Player1} }

// Current returns the player to move.
func (t Turn) Current() Player {
    if t.current == None {
        return Player1
    }
    return t.current
}

// Advance applies the result of a claim that completed n boxes and
// returns the player to move next.
func (t *Turn) Advance(completed int) Player {
    cur := t.Current()
    if completed > 0 {
        t.current = cur
        return cur
    }
    t.current = cur.Opponent()
    return t.current
}
