package format

import (
	"html"
	"strings"
)

// Escape makes arbitrary text safe for Telegram's HTML parse mode.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in <b>.
func Bold(text string) string {
	return "<b>" + Escape(text) + "</b>"
}

// Link renders an inline link; an empty href degrades to plain escaped text.
func Link(text, href string) string {
	if strings.TrimSpace(href) == "" {
		return Escape(text)
	}
	return `<a href="` + Escape(href) + `">` + Escape(text) + "</a>"
}

// Lines joins non-empty lines with newlines.
func Lines(lines ...string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
