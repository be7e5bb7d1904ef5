package web

import (
    "bytes"
    "fmt"
    "html/template"

    "github.com/jaminalder/dots-and-boxes/internal/app"
    "github.com/jaminalder/dots-and-boxes/internal/domain"
)

type templates struct {
    base  *template.Template
    game  *template.Template
    board *template.Template
    index *template.Template
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Dots and Boxes</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>` + styles + `</style>
</head><body>{{template "content" .}}</body></html>`))
    // Define the board template within the same set so game can include it
    template.Must(base.New("board").Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board-wrapper" hx-sse="swap:board">{{template "board" .Board}}</div>
</div>
<form action="/" method="get"><button>New game</button></form>
<script>
(function () {
  var last = null;
  var timer = null;
  function check() {
    var portrait = window.innerWidth < window.innerHeight;
    if (portrait === last) { return; }
    last = portrait;
    fetch("/game/{{.ID}}/orientation", {
      method: "POST",
      headers: {"Content-Type": "application/x-www-form-urlencoded"},
      body: "portrait=" + portrait
    });
  }
  window.addEventListener("resize", function () {
    if (timer) { clearTimeout(timer); }
    timer = setTimeout(check, 60);
  });
  check();
})();
</script>`))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Parse(boardTemplate))
    return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    if name == "" {
        _ = t.Execute(&buf, data)
    } else {
        _ = t.ExecuteTemplate(&buf, name, data)
    }
    return buf.Bytes()
}

// cellView is one item of the CSS grid: a dot, a line or a box.
type cellView struct {
    ID    string
    Class string
    Row   int
    Col   int
    Free  bool
}

type boardView struct {
    ID          string
    Rows        int
    Cols        int
    Cells       []cellView
    P1, P2      string
    S1, S2      int
    Current     int
    CurrentName string
    Over        bool
    Message     string
    Error       string
}

func playerClass(p domain.Player) string {
    if p == domain.Player2 {
        return " p2"
    }
    return " p1"
}

// newBoardView lays the board out as a (2*rows+1) x (2*cols+1) grid.
func newBoardView(gs app.GameState, errMsg string) boardView {
    st := gs.State
    v := boardView{
        ID:          gs.ID,
        Rows:        st.Rows,
        Cols:        st.Cols,
        P1:          st.PlayerName(domain.Player1),
        P2:          st.PlayerName(domain.Player2),
        S1:          st.Score(domain.Player1),
        S2:          st.Score(domain.Player2),
        Current:     int(st.Current),
        CurrentName: st.PlayerName(st.Current),
        Over:        st.Over,
        Error:       errMsg,
    }
    if st.Over {
        if st.Result.Draw() {
            v.Message = "Draw!"
        } else {
            v.Message = st.PlayerName(st.Result.Winner) + " wins!"
        }
    }
    line := func(l domain.Line, base string, row, col int) cellView {
        c := cellView{ID: l.String(), Class: base, Row: row, Col: col}
        owner, taken := st.Lines[l]
        if !taken {
            c.Free = !st.Over
            return c
        }
        c.Class += " taken" + playerClass(owner)
        if st.LastComputerMove != nil && *st.LastComputerMove == l {
            c.Class += " last-computer-move"
        }
        return c
    }
    for r := 0; r <= st.Rows; r++ {
        for c := 0; c <= st.Cols; c++ {
            v.Cells = append(v.Cells, cellView{Class: "dot", Row: r*2 + 1, Col: c*2 + 1})
            if c < st.Cols {
                v.Cells = append(v.Cells, line(domain.H(r, c), "line-h", r*2+1, c*2+2))
            }
            if r < st.Rows {
                v.Cells = append(v.Cells, line(domain.V(r, c), "line-v", r*2+2, c*2+1))
            }
            if r < st.Rows && c < st.Cols {
                b := domain.Box{Row: r, Col: c}
                bc := cellView{ID: b.String(), Class: "box", Row: r*2 + 2, Col: c*2 + 2}
                if owner, ok := st.Boxes[b]; ok {
                    bc.Class += playerClass(owner)
                }
                v.Cells = append(v.Cells, bc)
            }
        }
    }
    return v
}

func (v boardView) GridStyle() template.CSS {
    return template.CSS(fmt.Sprintf(
        "grid-template-columns: repeat(%d, 16px 48px) 16px; grid-template-rows: repeat(%d, 16px 48px) 16px;",
        v.Cols, v.Rows,
    ))
}

const indexTemplate = `<h1>Dots and Boxes</h1>
<form action="/game" method="post">
  <label>Mode <select name="mode"><option value="pvp">Player vs Player</option><option value="pvc">Player vs Computer</option></select></label>
  <label>Difficulty <select name="difficulty"><option value="easy">Easy</option><option value="medium">Medium</option><option value="hard">Hard</option></select></label>
  <label>Player 1 <input name="p1" placeholder="Player 1"></label>
  <label>Player 2 <input name="p2" placeholder="Player 2"></label>
  <button>Start</button>
</form>`

const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="scoreboard">
    <span class="player1{{if eq .Current 1}} active{{end}}">{{.P1}}: {{.S1}}</span>
    <span class="player2{{if eq .Current 2}} active{{end}}">{{.P2}}: {{.S2}}</span>
  </div>
  {{if .Over}}
  <div class="result">{{.Message}}</div>
  <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post"><button type="submit">Play again</button></form>
  {{else}}
  <div class="turn">Turn: {{.CurrentName}}</div>
  {{end}}
  <div class="grid" style="{{.GridStyle}}">
  {{range .Cells}}{{if .Free}}<form class="{{.Class}}" style="grid-row: {{.Row}}; grid-column: {{.Col}}" hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post"><input type="hidden" name="line" value="{{.ID}}"><button type="submit" aria-label="{{.ID}}"></button></form>{{else}}<div{{if .ID}} id="{{.ID}}"{{end}} class="{{.Class}}" style="grid-row: {{.Row}}; grid-column: {{.Col}}"></div>{{end}}{{end}}
  </div>
</div>
`

const styles = `
body { background: #0b0b1a; color: #eee; font-family: sans-serif; }
.grid { display: grid; }
.dot { background: #fff; border-radius: 50%; }
.line-h, .line-v { margin: 0; }
.line-h button, .line-v button { width: 100%; height: 100%; border: 0; background: #222; cursor: pointer; }
.taken.p1 { background: #00f5ff; }
.taken.p2 { background: #ff00cc; }
.box.p1 { background: rgba(0, 245, 255, .3); }
.box.p2 { background: rgba(255, 0, 204, .3); }
.last-computer-move { box-shadow: 0 0 10px #ff00cc; }
.active { font-weight: bold; }
.alert { color: #ff8080; }
`
