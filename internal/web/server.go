package web

import (
    "net/http"

    "github.com/go-chi/chi/v5"
    "github.com/jaminalder/dots-and-boxes/internal/app"
)

// NewServer wires routes and returns an http.Handler. It also installs the
// board renderer used for server-sent updates.
func NewServer(s *app.Service) http.Handler {
    r := chi.NewRouter()
    h := &handlers{svc: s, tpl: loadTemplates()}
    s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })
    r.Get("/", h.index)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/play", h.play)
        r.Post("/restart", h.restart)
        r.Post("/orientation", h.orientation)
        r.Get("/events", h.events)
    })
    return r
}
