// Package excerpt builds short plain-text previews from stored rich text.
package excerpt

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
)

// Ellipsis marks a truncated preview.
const Ellipsis = "…"

// Ambiguous-width runes, the ellipsis included, always count as one cell.
var widths = func() *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	return cond
}()

// Plain strips markup from s, drops script and style bodies, decodes
// entities and collapses runs of whitespace.
func Plain(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	hidden := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(b.String())
		case html.TextToken:
			if hidden == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if isHiddenTag(z) {
				hidden++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if isHiddenTag(z) && hidden > 0 {
				hidden--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

// Truncate shortens s to at most width display cells, appending Ellipsis when
// anything was cut. Wide (East Asian) runes count as two cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if widths.StringWidth(s) <= width {
		return s
	}
	room := width - widths.StringWidth(Ellipsis)
	if room <= 0 {
		return Ellipsis
	}
	cut := strings.TrimRight(widths.Truncate(s, room, ""), " ")
	return cut + Ellipsis
}

// Summary is Plain followed by Truncate.
func Summary(s string, width int) string {
	return Truncate(Plain(s), width)
}

func isHiddenTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	default:
		return false
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
