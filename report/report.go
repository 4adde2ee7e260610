// Package report renders a finished run as Markdown and HTML.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"strings"
	"text/template"
	"unicode/utf8"

	"yt-seo-studio/types"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed report.md.tmpl
var markdownTemplate string

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"join":      strings.Join,
	"inc":       func(i int) int { return i + 1 },
	"runeCount": utf8.RuneCountInString,
}).Parse(markdownTemplate))

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders the run as a Markdown document
func Markdown(state *types.RunState) (string, error) {
	if state == nil {
		return "", fmt.Errorf("nil run state")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, state); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// HTML converts Markdown into a standalone HTML page
func HTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title)))
	sb.WriteString("<style>body{font-family:sans-serif;max-width:820px;margin:2rem auto;line-height:1.5}blockquote{color:#555}</style>\n")
	sb.WriteString("</head>\n<body>\n")
	sb.Write(body.Bytes())
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}
