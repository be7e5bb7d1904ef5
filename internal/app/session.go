package app

import (
    "errors"
    "fmt"
    "log/slog"
    "math/rand"
    "sync"
    "time"

    "github.com/jaminalder/dots-and-boxes/internal/ai"
    "github.com/jaminalder/dots-and-boxes/internal/domain"
)

// State is a copy of a session's state for rendering.
type State struct {
    Rows             int
    Cols             int
    Lines            map[domain.Line]domain.Player
    Boxes            map[domain.Box]domain.Player
    Scores           [3]int // indexed by player; [0] unused
    Current          domain.Player
    Settings         Settings
    Over             bool
    Result           Result
    Locked           bool
    Portrait         bool
    LastComputerMove *domain.Line
}

func (st State) Score(p domain.Player) int { return st.Scores[p] }

// PlayerName returns the display name of p.
func (st State) PlayerName(p domain.Player) string {
    if p == domain.Player2 {
        return st.Settings.Player2
    }
    return st.Settings.Player1
}

// Session runs one game at a time: ledger, boxes, scores, turns, the
// scheduled computer move and orientation reflow. All state changes happen
// under mu; events are delivered after mu is released.
type Session struct {
    mu        sync.Mutex
    cfg       Config
    sched     Scheduler
    log       *slog.Logger
    opp       *ai.Opponent
    listeners []Listener

    settings Settings
    grid     domain.Grid
    ledger   *domain.Ledger
    boxes    map[domain.Box]domain.Player
    scores   [3]int
    turn     domain.Turn
    over     bool
    result   Result
    portrait bool

    // generation increments on every new game; timers carry the value they
    // were scheduled under and do nothing once it changes.
    generation      uint64
    startLocked     bool
    unlock          Timer
    computerPending bool
    pending         Timer
    lastComputer    *domain.Line
}

// NewSession builds a session with an empty board. A nil scheduler uses real
// timers, a nil logger uses slog.Default().
func NewSession(cfg Config, sched Scheduler, logger *slog.Logger) (*Session, error) {
    grid, err := domain.NewGrid(cfg.Rows, cfg.Cols)
    if err != nil {
        return nil, err
    }
    if sched == nil {
        sched = ClockScheduler
    }
    if logger == nil {
        logger = slog.Default()
    }
    seed := cfg.Seed
    if seed == 0 {
        seed = time.Now().UnixNano()
    }
    s := &Session{
        cfg:      cfg,
        sched:    sched,
        log:      logger,
        opp:      ai.New(rand.NewSource(seed)),
        settings: Settings{}.normalized(),
        grid:     grid,
        portrait: grid.Rows > grid.Cols,
    }
    s.resetLocked()
    return s, nil
}

// OnEvent registers l for all future events.
func (s *Session) OnEvent(l Listener) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.listeners = append(s.listeners, l)
}

// Configure sets mode, difficulty and names for this and later games.
func (s *Session) Configure(st Settings) error {
    if st.Mode != PvP && st.Mode != PvC {
        return fmt.Errorf("%w: %d", ErrUnknownMode, st.Mode)
    }
    if st.Difficulty > ai.Hard {
        return fmt.Errorf("%w: %d", ai.ErrUnknownDifficulty, st.Difficulty)
    }
    s.mu.Lock()
    s.settings = st.normalized()
    if s.settings.Mode == PvC && !s.over && s.turn.Current() == domain.Player2 {
        s.scheduleComputerLocked()
    }
    s.mu.Unlock()
    s.log.Info("session configured", "mode", st.Mode.String(), "difficulty", st.Difficulty.String())
    return nil
}

// Start begins a new game and ignores input for Config.StartLock.
func (s *Session) Start() {
    s.mu.Lock()
    events := s.resetLocked()
    if s.cfg.StartLock > 0 {
        s.startLocked = true
        gen := s.generation
        s.unlock = s.sched.AfterFunc(s.cfg.StartLock, func() { s.releaseStartLock(gen) })
    }
    s.mu.Unlock()
    s.emit(events)
}

// NewGame clears the board and scores, keeping settings and grid shape.
func (s *Session) NewGame() {
    s.mu.Lock()
    events := s.resetLocked()
    s.mu.Unlock()
    s.emit(events)
}

func (s *Session) resetLocked() []Event {
    s.generation++
    if s.pending != nil {
        s.pending.Stop()
        s.pending = nil
    }
    if s.unlock != nil {
        s.unlock.Stop()
        s.unlock = nil
    }
    s.computerPending = false
    s.startLocked = false
    s.ledger = domain.NewLedger(s.grid)
    s.boxes = make(map[domain.Box]domain.Player, s.grid.TotalBoxes())
    s.scores = [3]int{}
    s.turn = domain.NewTurn()
    s.over = false
    s.result = Result{}
    s.lastComputer = nil
    s.log.Info("new game", "rows", s.grid.Rows, "cols", s.grid.Cols, "mode", s.settings.Mode.String())
    return []Event{
        BoardReset{Rows: s.grid.Rows, Cols: s.grid.Cols},
        TurnChanged{Player: domain.Player1},
    }
}

func (s *Session) releaseStartLock(gen uint64) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if gen == s.generation {
        s.startLocked = false
        s.unlock = nil
    }
}

func (s *Session) lockedLocked() bool { return s.startLocked || s.computerPending }

// Locked reports whether human input is currently ignored.
func (s *Session) Locked() bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.lockedLocked()
}

// RequestMove claims line for the player to move. It reports false without an
// error when the request is ignored: input locked, game over, the computer's
// turn, or the line already taken. Lines outside the grid yield ErrInvalidMove.
func (s *Session) RequestMove(line domain.Line) (bool, error) {
    s.mu.Lock()
    if s.over || s.lockedLocked() || (s.settings.Mode == PvC && s.turn.Current() == domain.Player2) {
        s.mu.Unlock()
        s.log.Debug("move ignored", "line", line.String())
        return false, nil
    }
    if !s.grid.IsValidLine(line) {
        s.mu.Unlock()
        return false, fmt.Errorf("%w: %s", domain.ErrInvalidMove, line)
    }
    events, err := s.applyLocked(line, s.turn.Current())
    s.mu.Unlock()
    if errors.Is(err, domain.ErrAlreadyClaimed) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    s.emit(events)
    return true, nil
}

func (s *Session) applyLocked(line domain.Line, p domain.Player) ([]Event, error) {
    boxes, err := s.ledger.Claim(line, p)
    if err != nil {
        return nil, err
    }
    events := []Event{LineClaimed{Line: line, Player: p}}
    if len(boxes) > 0 {
        done := make([]CompletedBox, 0, len(boxes))
        for _, b := range boxes {
            s.boxes[b] = p
            s.scores[p]++
            done = append(done, CompletedBox{Box: b, Player: p})
        }
        events = append(events, BoxesCompleted{Boxes: done})
    }
    next := s.turn.Advance(len(boxes))
    if next != p {
        events = append(events, TurnChanged{Player: next})
    }
    s.log.Debug("line claimed", "line", line.String(), "player", int(p), "boxes", len(boxes))

    if s.scores[domain.Player1]+s.scores[domain.Player2] >= s.grid.TotalBoxes() {
        s.over = true
        s.result = resultOf(s.scores)
        events = append(events, GameOver{Result: s.result})
        s.log.Info("game over",
            "winner", int(s.result.Winner),
            "p1", s.scores[domain.Player1],
            "p2", s.scores[domain.Player2],
        )
        return events, nil
    }
    if s.settings.Mode == PvC && next == domain.Player2 {
        s.scheduleComputerLocked()
    }
    return events, nil
}

// scheduleComputerLocked keeps at most one computer move pending.
func (s *Session) scheduleComputerLocked() {
    if s.computerPending {
        return
    }
    s.computerPending = true
    gen := s.generation
    s.pending = s.sched.AfterFunc(s.cfg.ComputerDelay, func() { s.computerMove(gen) })
}

func (s *Session) computerMove(gen uint64) {
    s.mu.Lock()
    if gen != s.generation {
        s.mu.Unlock()
        return
    }
    s.computerPending = false
    s.pending = nil
    if s.over || s.settings.Mode != PvC || s.turn.Current() != domain.Player2 {
        s.mu.Unlock()
        return
    }
    move, err := s.opp.ChooseMove(s.ledger, s.settings.Difficulty, domain.Player2)
    if err != nil {
        s.mu.Unlock()
        s.log.Error("computer move", "err", err)
        return
    }
    events, err := s.applyLocked(move, domain.Player2)
    if err != nil {
        s.mu.Unlock()
        s.log.Error("computer move rejected", "line", move.String(), "err", err)
        return
    }
    s.lastComputer = &move
    s.mu.Unlock()
    s.emit(events)
}

// NotifyOrientationChanged swaps rows and cols and transposes every claimed
// line and box. Entries that do not fit the new grid are dropped.
func (s *Session) NotifyOrientationChanged() {
    s.mu.Lock()
    to := s.grid.Transpose()
    ledger, droppedLines := s.ledger.Reflow(to)
    boxes := make(map[domain.Box]domain.Player, len(s.boxes))
    var scores [3]int
    droppedBoxes := 0
    for b, p := range s.boxes {
        t := b.Transpose()
        if !to.IsValidBox(t) {
            droppedBoxes++
            continue
        }
        boxes[t] = p
        scores[p]++
    }
    if s.lastComputer != nil {
        t := s.lastComputer.Transpose()
        if to.IsValidLine(t) {
            s.lastComputer = &t
        } else {
            s.lastComputer = nil
        }
    }
    s.grid, s.ledger, s.boxes, s.scores = to, ledger, boxes, scores
    s.portrait = !s.portrait
    s.mu.Unlock()

    s.log.Info("board reflowed",
        "rows", to.Rows, "cols", to.Cols,
        "droppedLines", len(droppedLines), "droppedBoxes", droppedBoxes,
    )
    s.emit([]Event{BoardReflowed{Rows: to.Rows, Cols: to.Cols}})
}

// Portrait reports the orientation the board is currently laid out for.
func (s *Session) Portrait() bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.portrait
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
    s.mu.Lock()
    defer s.mu.Unlock()
    st := State{
        Rows:     s.grid.Rows,
        Cols:     s.grid.Cols,
        Lines:    s.ledger.Entries(),
        Boxes:    make(map[domain.Box]domain.Player, len(s.boxes)),
        Scores:   s.scores,
        Current:  s.turn.Current(),
        Settings: s.settings,
        Over:     s.over,
        Result:   s.result,
        Locked:   s.lockedLocked(),
        Portrait: s.portrait,
    }
    for b, p := range s.boxes {
        st.Boxes[b] = p
    }
    if s.lastComputer != nil {
        m := *s.lastComputer
        st.LastComputerMove = &m
    }
    return st
}

func (s *Session) emit(events []Event) {
    if len(events) == 0 {
        return
    }
    s.mu.Lock()
    ls := append([]Listener(nil), s.listeners...)
    s.mu.Unlock()
    for _, e := range events {
        for _, l := range ls {
            l(e)
        }
    }
}
