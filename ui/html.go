package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

const documentTemplate = `{{define "value"}}{{.Label}}<span>{{.Value}}</span>{{end}}
{{- define "node"}}
{{- if .IsContainer}}<div{{with .ID}} id="{{.}}"{{end}}>{{range .Children}}{{template "node" .}}{{end}}</div>
{{- else if .IsButton}}<form method="post" action="/actions/{{.ID}}"><button type="submit" id="{{.ID}}">{{.Caption}}</button></form>
{{- else}}<div id="{{.ID}}">{{template "value" .}}</div>
{{- end}}
{{- end}}
{{- define "document"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: monospace; background: #14191e; color: #d3d3d3; }
#dungeonMap { min-height: 120px; border: 1px solid #3c4650; margin-bottom: 1em; }
#statsContainer > div { margin-bottom: 0.5em; }
</style>
</head>
<body>
{{template "node" .Root}}
<script>
(function () {
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(proto + "//" + location.host + "/ws");
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    var el = document.getElementById(msg.id);
    if (el) { el.innerHTML = msg.html; }
  };
})();
</script>
</body>
</html>
{{end}}`

var templates = template.Must(template.New("page").Parse(documentTemplate))

// RenderDocument writes the HTML document for root.
func RenderDocument(w io.Writer, title string, root *Node) error {
	var buf bytes.Buffer
	data := struct {
		Title string
		Root  *Node
	}{title, root}
	if err := templates.ExecuteTemplate(&buf, "document", data); err != nil {
		return fmt.Errorf("ui: rendering document: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderChange returns the inner HTML of a changed value region.
func RenderChange(c Change) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "value", c); err != nil {
		return "", fmt.Errorf("ui: rendering %s: %w", c.ID, err)
	}
	return buf.String(), nil
}
