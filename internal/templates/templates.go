// Package templates holds the server-rendered pages. Each page is exposed as a
// templ.Component so handlers render them the same way regardless of how the
// markup is produced.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/DAVIDafergan/tatpro-intake/internal/report"
)

var baseTmpl = template.Must(template.New("base").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #f6f6f4; color: #111; }
  main { max-width: 1200px; margin: 0 auto; padding: 24px; }
  h1 { font-size: 1.3rem; margin: 0 0 16px; }
  table { border-collapse: collapse; width: 100%; background: #fff; font-size: 0.85rem; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: start; vertical-align: top; }
  th { background: #333; color: #fff; }
  tr:nth-child(even) td { background: #fafafa; }
  .muted { color: #666; }
  .btn { border: 1px solid #333; background: #fff; padding: 4px 10px; cursor: pointer; }
  .btn-danger { border-color: #c0392b; color: #c0392b; }
  .error { color: #c0392b; }
  .toolbar { display: flex; gap: 8px; margin-bottom: 12px; }
</style>
</head>
<body>
<main>
{{template "content" .}}
</main>
</body>
</html>`))

var entryTmpl = template.Must(template.Must(baseTmpl.Clone()).Parse(`
{{define "content"}}
<h1>{{.Title}}</h1>
<div id="root"></div>
<p class="muted">{{.Body}}</p>
{{end}}`))

var leadsTmpl = template.Must(template.Must(baseTmpl.Clone()).Parse(`
{{define "content"}}
<h1>{{.Title}} <span class="muted">({{len .Leads}})</span></h1>
<div class="toolbar">
  <a class="btn" href="/api/admin/export.xlsx">XLSX</a>
  <a class="btn" href="/api/admin/export.pdf">PDF</a>
</div>
{{if not .Leads}}
<p class="muted">{{.Empty}}</p>
{{else}}
<table>
  <thead>
    <tr>{{range .Headers}}<th>{{.}}</th>{{end}}<th></th></tr>
  </thead>
  <tbody>
  {{range .Leads}}
    <tr id="lead-{{.ID}}">
      {{range .Cells}}<td>{{.}}</td>{{end}}
      <td>
        <button class="btn btn-danger"
          hx-delete="/api/forms/{{.ID}}"
          hx-confirm="{{$.Confirm}}"
          hx-target="#lead-{{.ID}}"
          hx-swap="delete">&times;</button>
      </td>
    </tr>
  {{end}}
  </tbody>
</table>
{{end}}
{{end}}`))

var loginTmpl = template.Must(template.Must(baseTmpl.Clone()).Parse(`
{{define "content"}}
<h1>{{.Title}}</h1>
<form action="/api/admin-login" method="post" hx-post="/api/admin-login" hx-target="#login-error" hx-swap="innerHTML">
  <input type="password" name="code" autocomplete="off" required>
  <button type="submit" class="btn">{{.Submit}}</button>
</form>
<p id="login-error" class="error">{{.Error}}</p>
{{end}}`))

var loginErrorTmpl = template.Must(template.New("login-error").Parse(`<span role="alert">{{.}}</span>`))

// page carries the fields every layout reads.
type page struct {
	Lang  string
	Dir   string
	Title string
}

func newPage(lang, title string) page {
	dir := "ltr"
	if lang == "he" {
		dir = "rtl"
	}
	return page{Lang: lang, Dir: dir, Title: title}
}

func component(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, "base", data)
	})
}

// Entry is the placeholder document served when no client build is present.
func Entry(lang, title, body string) templ.Component {
	return component(entryTmpl, struct {
		page
		Body string
	}{newPage(lang, title), body})
}

// LeadsText holds the localized strings of the leads page.
type LeadsText struct {
	Title   string
	Empty   string
	Confirm string
}

// Leads renders the admin report with one delete button per row.
func Leads(lang string, text LeadsText, headers []string, leads []report.Lead) templ.Component {
	return component(leadsTmpl, struct {
		page
		Empty   string
		Confirm string
		Headers []string
		Leads   []report.Lead
	}{newPage(lang, text.Title), text.Empty, text.Confirm, headers, leads})
}

// Login is the access code form shown when the leads page is requested
// without a valid session. errMsg is shown under the form when non-empty.
func Login(lang, title, submit, errMsg string) templ.Component {
	return component(loginTmpl, struct {
		page
		Submit string
		Error  string
	}{newPage(lang, title), submit, errMsg})
}

// LoginError is the fragment swapped under the login form after a rejected code.
func LoginError(msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return loginErrorTmpl.Execute(w, msg)
	})
}
