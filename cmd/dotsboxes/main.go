package main

import (
    "flag"
    "log/slog"
    "net/http"
    "os"
    "strings"
    "time"

    "github.com/jaminalder/dots-and-boxes/internal/app"
    "github.com/jaminalder/dots-and-boxes/internal/domain"
    "github.com/jaminalder/dots-and-boxes/internal/web"
)

// statusWriter captures HTTP status and bytes written.
type statusWriter struct {
    http.ResponseWriter
    status int
    bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
    if w.status == 0 {
        w.status = http.StatusOK
    }
    n, err := w.ResponseWriter.Write(b)
    w.bytes += n
    return n, err
}

// Flush keeps the event stream working behind the logger.
func (w *statusWriter) Flush() {
    if f, ok := w.ResponseWriter.(http.Flusher); ok {
        f.Flush()
    }
}

// requestLogger logs method, path, status, bytes, and duration.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        sw := &statusWriter{ResponseWriter: w}
        next.ServeHTTP(sw, r)
        logger.Info("http",
            "method", r.Method,
            "path", r.URL.Path,
            "status", sw.status,
            "bytes", sw.bytes,
            "dur", time.Since(start).Round(time.Millisecond),
        )
    })
}

func parseLevel(s string) slog.Level {
    switch strings.ToLower(s) {
    case "debug":
        return slog.LevelDebug
    case "warn":
        return slog.LevelWarn
    case "error":
        return slog.LevelError
    }
    return slog.LevelInfo
}

func main() {
    def := app.DefaultConfig()
    addr := flag.String("addr", "127.0.0.1:8080", "listen address")
    rows := flag.Int("rows", def.Rows, "box rows in landscape orientation")
    cols := flag.Int("cols", def.Cols, "box columns in landscape orientation")
    delay := flag.Duration("ai-delay", def.ComputerDelay, "pause before the computer moves")
    startLock := flag.Duration("start-lock", def.StartLock, "input lock after a game starts")
    seed := flag.Int64("seed", 0, "computer opponent seed (0 = clock)")
    levelStr := flag.String("log-level", "info", "debug|info|warn|error")
    flag.Parse()

    logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*levelStr)}))

    if _, err := domain.NewGrid(*rows, *cols); err != nil {
        logger.Error("bad board size", "rows", *rows, "cols", *cols, "err", err)
        os.Exit(2)
    }
    cfg := app.Config{Rows: *rows, Cols: *cols, ComputerDelay: *delay, StartLock: *startLock, Seed: *seed}
    svc := app.NewService(cfg)
    svc.SetLogger(logger)

    srv := &http.Server{
        Addr:              *addr,
        Handler:           requestLogger(logger, web.NewServer(svc)),
        ReadHeaderTimeout: 5 * time.Second,
    }
    logger.Info("listening", "addr", *addr, "rows", *rows, "cols", *cols, "ai_delay", *delay)
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        logger.Error("server error", "err", err)
        os.Exit(1)
    }
}
