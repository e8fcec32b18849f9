// Package markdown renders Markdown exports to HTML with goldmark.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// The export embeds news items as raw HTML, so raw HTML passes through.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Render converts src to HTML.
func Render(w io.Writer, src []byte) error {
	if err := md.Convert(src, w); err != nil {
		return fmt.Errorf("markdown: %w", err)
	}
	return nil
}

// String is Render into a string.
func String(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, src); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Markdown returns a templ.Component that renders src as HTML.
func Markdown(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Render(w, []byte(src))
	})
}

// Page writes a standalone HTML document around the rendered src.
func Page(w io.Writer, title string, src []byte) error {
	var body bytes.Buffer
	if err := Render(&body, src); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>%s</title><link rel=\"stylesheet\" href=\"public/style.css\"></head>\n<body class=\"markdown-preview\">\n%s</body></html>\n",
		templ.EscapeString(title), body.String())
	return err
}
