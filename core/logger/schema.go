package logger

import (
	"log/slog"
	"slices"
	"strings"
)

// levelName maps slog levels onto the four names the log schema allows.
func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

type enum map[string]struct{}

func newEnum(values ...string) enum {
	e := make(enum, len(values))
	for _, v := range values {
		e[v] = struct{}{}
	}
	return e
}

func (e enum) lookup(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	_, ok := e[v]
	return v, ok
}

var (
	statusValues  = newEnum("ok", "fail", "skip", "rate_limited", "cancelled")
	outcomeValues = newEnum("ok", "fail", "cancelled", "rate_limited")
)

// Keys are emitted in this order; anything else follows alphabetically.
var (
	envelopeKeys = []string{"ts", "level", "component", "event", "status", "rid", "rid_full", "ts_unix_nano"}
	updateKeys   = []string{"update_id", "user_id", "chat_id", "chat_type", "handler", "op", "cb_key", "token", "outcome", "duration_ms"}
	shopKeys     = []string{"messages", "kb", "count", "category_id", "service_id", "delta", "quantity", "items", "payload", "lang", "username"}
	infraKeys    = []string{"mode", "listen", "public_url", "url", "http_code", "db", "host", "port"}
	errorKeys    = []string{"err", "err_code", "cause", "rate_limited"}

	defaultKeyOrder = slices.Concat(envelopeKeys, updateKeys, shopKeys, infraKeys, errorKeys)
)
