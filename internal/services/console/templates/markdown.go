package templates

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in article bodies is not rendered: goldmark drops it unless
// WithUnsafe is set.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
)

// Markdown renders article content. On conversion failure the source is
// shown as escaped preformatted text.
func Markdown(source string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(source), &buf); err != nil {
			return markdownSource(source).Render(ctx, w)
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}
