package tasklist

import (
	"bytes"
	"html/template"
	"io"
	"net/url"
)

var listTemplate = template.Must(template.New("tasklist").Funcs(template.FuncMap{
	"pathEscape": url.PathEscape,
}).Parse(listHTML))

// Render writes m as an HTML fragment. Actions post to
// /board/{category}/...
func Render(w io.Writer, m Model) error {
	return listTemplate.ExecuteTemplate(w, "tasklist", m)
}

// HTML renders m into a template-safe value for embedding in a page.
func HTML(m Model) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, m); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

const listHTML = `
{{define "empty-state"}}
  <div class="empty" data-testid="empty-state">No tasks here yet.</div>
{{end}}

{{define "tasklist"}}
<section class="stack" data-category="{{.Category}}">
  <strong class="listTitle">{{.Title}}</strong>

  {{if .ShowAlert}}
  <div class="alert alert-success" role="alert" data-testid="alert">
    <p>{{.AlertText}}</p>
    <form method="post" action="/board/{{.Category}}/alert/dismiss">
      <button type="submit" class="close" aria-label="Dismiss">&times;</button>
    </form>
  </div>
  {{end}}

  {{if .Error}}
  <div class="alert alert-danger" role="alert" data-testid="error">
    <p>{{.Error}}</p>
    <form method="post" action="/board/{{.Category}}/error/dismiss">
      <button type="submit" class="close" aria-label="Dismiss">&times;</button>
    </form>
  </div>
  {{end}}

  {{if .Empty}}
    {{template "empty-state"}}
  {{else}}
  <ul class="list" data-testid="rows">
    {{range .Rows}}
    <li class="row" id="task-{{.ID}}">
      <div class="rowMain">
        <strong>{{.Label}}</strong>
        <div class="rowMeta">
          <span class="badge badge-primary">{{.Priority}}</span>
          <span class="badge badge-info">{{.Difficulty}}</span>
        </div>
      </div>
      <div class="rowActions">
        <form method="post" action="/board/{{$.Category}}/tasks/{{pathEscape .ID}}/move">
          <button type="submit" class="btn btn-warning" aria-label="Move">{{if eq .Direction "left"}}&larr;{{else}}&rarr;{{end}}</button>
        </form>
        <form method="post" action="/board/{{$.Category}}/tasks/{{pathEscape .ID}}/delete">
          <button type="submit" class="btn btn-danger" aria-label="Delete">&#128465;</button>
        </form>
      </div>
    </li>
    {{end}}
  </ul>
  {{end}}

  <p class="footer" data-testid="total">{{.Footer}}</p>
</section>
{{end}}
`
