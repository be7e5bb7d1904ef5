package web

import (
    "bytes"
    "io"
    "log/slog"
    "net/http"
    "net/http/httptest"
    "net/url"
    "strings"
    "testing"

    "github.com/jaminalder/dots-and-boxes/internal/app"
    "github.com/jaminalder/dots-and-boxes/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
    t.Helper()
    cfg := app.DefaultConfig()
    cfg.StartLock = 0
    cfg.Seed = 1
    s := app.NewService(cfg)
    s.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
    h := NewServer(s)
    return s, h
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
    req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    return rr
}

func TestIndexPage(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/game\"") || !strings.Contains(body, "name=\"difficulty\"") {
        t.Fatalf("index should contain create form; got body: %q", body)
    }
}

func TestCreateRedirectsToGame(t *testing.T) {
    svc, h := newTestServer(t)
    rr := postForm(h, "/game", url.Values{"mode": {"pvc"}, "difficulty": {"hard"}, "p1": {"Ada"}})
    if rr.Code != http.StatusSeeOther && rr.Code != http.StatusFound {
        t.Fatalf("expected redirect, got %d", rr.Code)
    }
    loc := rr.Result().Header.Get("Location")
    if !strings.HasPrefix(loc, "/game/") {
        t.Fatalf("expected redirect to /game/{id}, got %q", loc)
    }
    gs, ok := svc.Get(strings.TrimPrefix(loc, "/game/"))
    if !ok {
        t.Fatalf("created game not found")
    }
    if gs.State.Settings.Mode != app.PvC || gs.State.Settings.Player1 != "Ada" || gs.State.Settings.Player2 != app.ComputerName {
        t.Fatalf("unexpected settings %+v", gs.State.Settings)
    }
}

func TestCreateRejectsUnknownMode(t *testing.T) {
    _, h := newTestServer(t)
    rr := postForm(h, "/game", url.Values{"mode": {"online"}})
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d", rr.Code)
    }
}

func TestGamePageRendersBoardAndSSE(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame(app.Settings{Mode: app.PvP})

    req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/game/"+gs.ID+"/events") {
        t.Fatalf("expected SSE wiring in page; got body: %q", body)
    }
    if !strings.Contains(body, "value=\"h-0-0\"") || !strings.Contains(body, "value=\"v-5-9\"") {
        t.Fatalf("expected clickable lines for a 6x9 board")
    }
    if !strings.Contains(body, "<!doctype html>") {
        t.Fatalf("expected full page layout")
    }
}

func TestUnknownGameIs404(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/game/missing", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusNotFound {
        t.Fatalf("expected 404, got %d", rr.Code)
    }
    if rr := postForm(h, "/game/missing/play", url.Values{"line": {"h-0-0"}}); rr.Code != http.StatusNotFound {
        t.Fatalf("expected 404 on play, got %d", rr.Code)
    }
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame(app.Settings{Mode: app.PvP})

    rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"line": {"h-0-0"}})
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "id=\"board\"") || !strings.Contains(body, "id=\"h-0-0\"") {
        t.Fatalf("expected board fragment with taken line, got %q", body)
    }
    if !strings.Contains(body, "taken p1") {
        t.Fatalf("expected line marked for player 1")
    }
    latest, _ := svc.Get(gs.ID)
    if latest.State.Lines[domain.H(0, 0)] != domain.Player1 {
        t.Fatalf("expected move applied, lines=%v", latest.State.Lines)
    }
}

func TestPlayEndpointReportsInvalidMove(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame(app.Settings{Mode: app.PvP})
    for _, line := range []string{"h-99-0", "diagonal"} {
        rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"line": {line}})
        if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Invalid move") {
            t.Fatalf("%s: expected invalid move message, got %d %q", line, rr.Code, rr.Body.String())
        }
    }
}

func TestOrientationEndpointReflows(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame(app.Settings{Mode: app.PvP})
    postForm(h, "/game/"+gs.ID+"/play", url.Values{"line": {"h-0-8"}})

    rr := postForm(h, "/game/"+gs.ID+"/orientation", url.Values{"portrait": {"true"}})
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    if !strings.Contains(rr.Body.String(), "id=\"v-8-0\"") {
        t.Fatalf("expected transposed line in fragment")
    }
    latest, _ := svc.Get(gs.ID)
    if latest.State.Rows != 9 || latest.State.Cols != 6 {
        t.Fatalf("expected 9x6 board, got %dx%d", latest.State.Rows, latest.State.Cols)
    }
    if rr := postForm(h, "/game/"+gs.ID+"/orientation", url.Values{"portrait": {"sideways"}}); rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d", rr.Code)
    }
}

func TestRestartEndpointClearsBoard(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame(app.Settings{Mode: app.PvP})
    postForm(h, "/game/"+gs.ID+"/play", url.Values{"line": {"h-0-0"}})
    rr := postForm(h, "/game/"+gs.ID+"/restart", nil)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    latest, _ := svc.Get(gs.ID)
    if len(latest.State.Lines) != 0 {
        t.Fatalf("expected empty board after restart")
    }
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
    _, h := newTestServer(t)
    rrCreate := postForm(h, "/game", url.Values{"mode": {"pvp"}})
    loc := rrCreate.Result().Header.Get("Location")
    if loc == "" {
        t.Fatalf("missing redirect location")
    }
    // Request SSE
    req := httptest.NewRequest("GET", loc+"/events", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    ct := rr.Result().Header.Get("Content-Type")
    if !strings.HasPrefix(ct, "text/event-stream") {
        io.Copy(io.Discard, rr.Result().Body)
        t.Fatalf("expected text/event-stream, got %q", ct)
    }
}

func TestWriteEventFramesEveryLine(t *testing.T) {
    var buf bytes.Buffer
    writeEvent(&buf, "board", []byte("<div>\n</div>"))
    want := "event: board\ndata: <div>\ndata: </div>\n\n"
    if buf.String() != want {
        t.Fatalf("expected %q, got %q", want, buf.String())
    }
}
