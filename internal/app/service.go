package app

import (
    "context"
    "errors"
    "log/slog"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/jaminalder/dots-and-boxes/internal/domain"
)

// Errors exposed by the service layer.
var ErrNotFound = errors.New("game not found")

// GameState is a snapshot of one game tracked by the service.
type GameState struct {
    ID      string
    State   State
    Created time.Time
    Updated time.Time
}

type entry struct {
    session *Session
    created time.Time
    updated time.Time
}

type subscriber struct {
    ch        chan []byte
    closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages sessions and the subscribers watching them.
type Service struct {
    mu     sync.Mutex
    cfg    Config
    sched  Scheduler
    log    *slog.Logger
    games  map[string]*entry
    subs   map[string]map[*subscriber]struct{}
    render func(GameState) []byte
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(cfg Config) *Service {
    return NewServiceWithRenderer(cfg, func(gs GameState) []byte { return nil })
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(cfg Config, renderer func(GameState) []byte) *Service {
    if renderer == nil {
        renderer = func(gs GameState) []byte { return nil }
    }
    return &Service{
        cfg:    cfg,
        sched:  ClockScheduler,
        log:    slog.Default(),
        games:  make(map[string]*entry),
        subs:   make(map[string]map[*subscriber]struct{}),
        render: renderer,
    }
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(gs GameState) []byte { return nil }
        return
    }
    s.render = renderer
}

// SetScheduler replaces the timer source used by sessions created afterwards.
func (s *Service) SetScheduler(sched Scheduler) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if sched == nil {
        sched = ClockScheduler
    }
    s.sched = sched
}

// SetLogger replaces the logger used by the service and new sessions.
func (s *Service) SetLogger(logger *slog.Logger) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if logger == nil {
        logger = slog.Default()
    }
    s.log = logger
}

// CreateGame registers a new session with st and starts its first game.
func (s *Service) CreateGame(st Settings) (*GameState, error) {
    id := uuid.NewString()
    s.mu.Lock()
    sess, err := NewSession(s.cfg, s.sched, s.log.With("game", id))
    if err != nil {
        s.mu.Unlock()
        return nil, err
    }
    if err := sess.Configure(st); err != nil {
        s.mu.Unlock()
        return nil, err
    }
    now := time.Now()
    s.games[id] = &entry{session: sess, created: now, updated: now}
    s.mu.Unlock()

    sess.OnEvent(func(Event) { s.broadcast(id) })
    sess.Start()
    gs, _ := s.Get(id)
    return gs, nil
}

// Get returns a snapshot of the game if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    e, ok := s.games[id]
    s.mu.Unlock()
    if !ok {
        return nil, false
    }
    return s.stateOf(id, e), true
}

func (s *Service) session(id string) (*entry, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    e, ok := s.games[id]
    if !ok {
        return nil, ErrNotFound
    }
    return e, nil
}

func (s *Service) stateOf(id string, e *entry) *GameState {
    st := e.session.Snapshot()
    s.mu.Lock()
    defer s.mu.Unlock()
    return &GameState{ID: id, State: st, Created: e.created, Updated: e.updated}
}

// Play requests line for the player to move. Ignored requests return the
// unchanged state without an error.
func (s *Service) Play(id string, line domain.Line) (*GameState, error) {
    e, err := s.session(id)
    if err != nil {
        return nil, err
    }
    if _, err := e.session.RequestMove(line); err != nil {
        return s.stateOf(id, e), err
    }
    return s.stateOf(id, e), nil
}

// Restart starts a new game in the same session, keeping its settings.
func (s *Service) Restart(id string) (*GameState, error) {
    e, err := s.session(id)
    if err != nil {
        return nil, err
    }
    e.session.Start()
    return s.stateOf(id, e), nil
}

// SetOrientation reflows the board when portrait differs from its layout.
func (s *Service) SetOrientation(id string, portrait bool) (*GameState, error) {
    e, err := s.session(id)
    if err != nil {
        return nil, err
    }
    if e.session.Portrait() != portrait {
        e.session.NotifyOrientationChanged()
    }
    return s.stateOf(id, e), nil
}

// broadcast renders the game and fans it out; slow subscribers are dropped.
func (s *Service) broadcast(id string) {
    var toDrop []*subscriber

    s.mu.Lock()
    e, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return
    }
    e.updated = time.Now()
    subs := s.copySubsLocked(id)
    render := s.render
    created, updated := e.created, e.updated
    s.mu.Unlock()
    if len(subs) == 0 {
        return
    }

    payload := render(GameState{ID: id, State: e.session.Snapshot(), Created: created, Updated: updated})
    for sub := range subs {
        select {
        case sub.ch <- payload:
        default:
            // drop slow subscriber
            sub.close()
            toDrop = append(toDrop, sub)
        }
    }
    if len(toDrop) > 0 {
        s.mu.Lock()
        for _, sub := range toDrop {
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
        }
        s.mu.Unlock()
        s.log.Debug("dropped slow subscribers", "game", id, "count", len(toDrop))
    }
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.games[id]; !ok {
        return nil, func() {}, ErrNotFound
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, 8)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub, nil
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}
