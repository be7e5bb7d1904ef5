package web

import (
    "bytes"
    "errors"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/jaminalder/dots-and-boxes/internal/ai"
    "github.com/jaminalder/dots-and-boxes/internal/app"
    "github.com/jaminalder/dots-and-boxes/internal/domain"
)

type handlers struct {
    svc *app.Service
    tpl *templates
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
    return renderTemplate(h.tpl.board, "", newBoardView(gs, errMsg))
}

func (h *handlers) writeBoard(w http.ResponseWriter, gs app.GameState, errMsg string) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    _, _ = w.Write(h.renderBoard(gs, errMsg))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.index, "base", nil))
}

func settingsFromForm(r *http.Request) (app.Settings, error) {
    _ = r.ParseForm()
    mode, err := app.ParseMode(r.Form.Get("mode"))
    if err != nil {
        return app.Settings{}, err
    }
    st := app.Settings{Mode: mode, Player1: r.Form.Get("p1"), Player2: r.Form.Get("p2")}
    if d := r.Form.Get("difficulty"); d != "" {
        if st.Difficulty, err = ai.ParseDifficulty(d); err != nil {
            return app.Settings{}, err
        }
    }
    return st, nil
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    st, err := settingsFromForm(r)
    if err != nil {
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    gs, err := h.svc.CreateGame(st)
    if err != nil {
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    data := struct {
        ID    string
        Board boardView
    }{ID: gs.ID, Board: newBoardView(*gs, "")}

    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    // Render page with embedded board container
    _, _ = w.Write(renderTemplate(h.tpl.game, "base", data))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    _ = r.ParseForm()
    var errMsg string
    gs, err := func() (*app.GameState, error) {
        line, err := domain.ParseLine(r.Form.Get("line"))
        if err != nil {
            return nil, err
        }
        return h.svc.Play(id, line)
    }()
    if err != nil {
        if errors.Is(err, app.ErrNotFound) {
            http.NotFound(w, r)
            return
        }
        if gs == nil {
            if g, ok := h.svc.Get(id); ok {
                gs = g
            }
        }
        switch {
        case errors.Is(err, domain.ErrInvalidMove):
            errMsg = "Invalid move"
        default:
            errMsg = "Move failed"
        }
    }
    if gs == nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, *gs, errMsg)
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.Restart(chi.URLParam(r, "id"))
    if err != nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, *gs, "")
}

func (h *handlers) orientation(w http.ResponseWriter, r *http.Request) {
    _ = r.ParseForm()
    portrait, err := strconv.ParseBool(r.Form.Get("portrait"))
    if err != nil {
        http.Error(w, "portrait must be true or false", http.StatusBadRequest)
        return
    }
    gs, err := h.svc.SetOrientation(chi.URLParam(r, "id"), portrait)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, *gs, "")
}

var heartbeatInterval = 15 * time.Second

// writeEvent frames b as one SSE event, one data field per line.
func writeEvent(w io.Writer, name string, b []byte) {
    _, _ = io.WriteString(w, "event: "+name+"\n")
    for _, ln := range bytes.Split(b, []byte("\n")) {
        _, _ = io.WriteString(w, "data: ")
        _, _ = w.Write(ln)
        _, _ = io.WriteString(w, "\n")
    }
    _, _ = io.WriteString(w, "\n")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    defer unsub()
    // heartbeat ticker
    ticker := time.NewTicker(heartbeatInterval)
    defer ticker.Stop()
    // Initial flush of headers
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case b, ok := <-ch:
            if !ok {
                return
            }
            writeEvent(w, "board", b)
            flusher.Flush()
        }
    }
}
