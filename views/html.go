// Package views renders the homepage and the admin screens as templ
// components. Components are pure functions of their input: the same data
// always produces the same bytes.
package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
)

// buffer accumulates markup; every method escapes unless named raw.
type buffer struct {
	bytes.Buffer
}

func (b *buffer) raw(s string) {
	b.WriteString(s)
}

func (b *buffer) text(s string) {
	b.WriteString(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (b *buffer) attr(name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(templ.EscapeString(value))
	b.WriteByte('"')
}

// href writes a sanitized href attribute. Unsafe schemes such as
// javascript: are replaced by templ's failure URL.
func (b *buffer) href(u string) {
	b.attr("href", string(templ.URL(u)))
}

// element writes <tag class="class">text</tag>.
func (b *buffer) element(tag, class, text string) {
	b.raw("<" + tag)
	if class != "" {
		b.attr("class", class)
	}
	b.raw(">")
	b.text(text)
	b.raw("</" + tag + ">")
}

// render adapts a buffer-filling function to templ.Component.
func render(fn func(ctx context.Context, b *buffer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b buffer
		if err := fn(ctx, &b); err != nil {
			return err
		}
		_, err := w.Write(b.Bytes())
		return err
	})
}

// embed renders c into b.
func (b *buffer) embed(ctx context.Context, c templ.Component) error {
	return c.Render(ctx, &b.Buffer)
}
