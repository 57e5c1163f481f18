package web

import (
	"bytes"
	"html/template"

	"github.com/jaminalder/timetravel-tictactoe/internal/domain"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"iter": func(n int) []int {
			a := make([]int, n)
			for i := range a {
				a[i] = i
			}
			return a
		},
		"add": func(a, b int) int { return a + b },
		"mul": func(a, b int) int { return a * b },
		"descending": func(o domain.Order) bool { return o == domain.Descending },
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-tac-toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.row{display:flex}.cell button{width:3em;height:3em;font-size:1.5em}
.win{color:red;font-weight:bold}.active{font-weight:bold}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// board lives in the same set so the game page can include it
	template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-tac-toe</h1><form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="board-container" sse-swap="board" hx-swap="innerHTML">{{template "board" .}}</div>
</div>`))
	// standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = t.Execute(&buf, data)
	} else {
		err = t.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// boardData is what the board template renders.
type boardData struct {
	ID   string
	View domain.View
}

const boardTemplate = `
<div id="board">
  <div class="game-board">
  {{range $r := iter 3}}
  <div class="row">
    {{range $c := iter 3}}
      {{with index $.View.Cells (add (mul $r 3) $c)}}
      <form class="cell" hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button type="submit" data-cell="{{.Index}}"{{if .Highlight}} class="win"{{end}}>{{.Label}}</button>
      </form>
      {{end}}
    {{end}}
  </div>
  {{end}}
  </div>
  <div class="game-info">
    <div class="status">{{.View.Status}}</div>
    <div class="moves-left">Moves left: {{.View.MovesRemaining}}</div>
    <ol{{if descending .View.Order}} reversed{{end}}>
      {{range .View.Moves}}
      <li>
        <form hx-post="/game/{{$.ID}}/jump" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="step" value="{{.Step}}">
          <button type="submit"{{if .Active}} class="active"{{end}}>{{if .Active}}<b>{{.Label}}</b>{{else}}{{.Label}}{{end}}</button>
        </form>
      </li>
      {{end}}
    </ol>
    <form hx-post="/game/{{.ID}}/order" hx-target="#board" hx-swap="outerHTML" method="post"><button type="submit">Toggle order</button></form>
    <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post"><button type="submit">Reset</button></form>
  </div>
</div>
`
