package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider exposes handlers used when incoming updates
// cannot be mapped to commands, callbacks, or expected documents.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Fallbacks wires a FallbackProvider into the router option shapes.
type Fallbacks struct {
	Text     tele.HandlerFunc
	Document tele.HandlerFunc
	Callback tele.HandlerFunc
}

// FromProvider collects the handlers of p; a nil provider yields no fallbacks.
func FromProvider(p FallbackProvider) Fallbacks {
	if p == nil {
		return Fallbacks{}
	}
	return Fallbacks{
		Text:     p.UnknownText(),
		Document: p.UnknownDocument(),
		Callback: p.UnknownCallback(),
	}
}
