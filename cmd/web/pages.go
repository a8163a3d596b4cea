package main

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"paper-analyzer/internal/llm"
)

type pageData struct {
	Session *sessionView
	Catalog []llm.ProviderInfo
	Error   string
	Result  *resultView
	Answer  *answerView
}

type sessionView struct {
	Provider string
	Model    string
	Key      string // masked
}

type resultView struct {
	RunID      string
	Dir        string
	Title      string
	Authors    string
	Abstract   string
	Figures    int
	Calls      int64
	Background template.HTML
	Report     template.HTML
}

type answerView struct {
	Source   string
	Question string
	Answer   template.HTML
}

type pages struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

func newPages() *pages {
	return &pages{
		tmpl: template.Must(template.New("index").Parse(indexPage)),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

// markdown renders model output. Raw HTML in the input is not passed through.
func (p *pages) markdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (p *pages) render(w http.ResponseWriter, status int, data pageData) error {
	data.Catalog = llm.Catalog()
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Paper Analyzer</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
.error { color: #b00020; border: 1px solid #b00020; padding: .5rem; }
details { border: 1px solid #ddd; margin: .5rem 0; padding: .5rem; }
summary { font-weight: bold; cursor: pointer; }
form { margin: 1rem 0; }
label { display: block; margin: .25rem 0; }
</style>
</head>
<body>
<h1>Paper Analyzer</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}

{{if .Session}}
<p>Using <strong>{{.Session.Provider}}</strong> / <code>{{.Session.Model}}</code> (key {{.Session.Key}})</p>
<form method="post" action="/session/clear"><button type="submit">Change model</button></form>

<h2>Analyze a paper</h2>
<form method="post" action="/analyze" enctype="multipart/form-data">
<label>PDF <input type="file" name="file" accept="application/pdf" required></label>
<button type="submit">Analyze</button>
</form>

<h2>Ask a question</h2>
<form method="post" action="/ask" enctype="multipart/form-data">
<label>PDF <input type="file" name="file" accept="application/pdf" required></label>
<label>Question <input type="text" name="question" size="60" required></label>
<button type="submit">Ask</button>
</form>
{{else}}
<h2>Choose a model</h2>
<form method="post" action="/session">
<label>Provider
<select name="provider">
{{range .Catalog}}<option value="{{.Provider}}">{{.Provider}}</option>{{end}}
</select></label>
<label>Model <input type="text" name="model" list="models" placeholder="provider default"></label>
<datalist id="models">{{range .Catalog}}{{range .Models}}<option value="{{.}}">{{end}}{{end}}</datalist>
<label>API key <input type="password" name="api_key" required></label>
<label>Base URL <input type="url" name="base_url" placeholder="optional"></label>
<button type="submit">Save</button>
</form>
{{end}}

{{with .Result}}
<h2>{{.Title}}</h2>
<p>Run <code>{{.RunID}}</code>: {{.Calls}} LLM calls, written to <code>{{.Dir}}</code></p>
<details open><summary>Basic Info</summary>
<p><strong>Authors:</strong> {{.Authors}}</p>
<p><strong>Number of Figures:</strong> {{.Figures}}</p>
<p><strong>Abstract:</strong> {{.Abstract}}</p>
</details>
<details><summary>Background</summary>{{.Background}}</details>
<details><summary>Figures</summary>{{.Report}}</details>
{{end}}

{{with .Answer}}
<h2>Answer</h2>
<p><em>{{.Source}}</em>: {{.Question}}</p>
<div>{{.Answer}}</div>
{{end}}
</body>
</html>
`
