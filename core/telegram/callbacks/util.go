package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Sep separates the callback kind from its arguments, and arguments from each other.
const Sep = ":"

// Split breaks raw callback data "kind:arg1:arg2" into kind and the argument tail.
// Telebot's "\f<unique>|<payload>" form is accepted too.
func Split(data string) (string, string) {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "\f") {
		data = strings.Replace(strings.TrimPrefix(data, "\f"), "|", Sep, 1)
	}
	kind, payload, _ := strings.Cut(data, Sep)
	return strings.TrimSpace(kind), payload
}

// Data returns the raw callback data or "" when the update has no callback.
func Data(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		if cb.Data == "" {
			return cb.Unique
		}
		return cb.Unique + Sep + cb.Data
	}
	return cb.Data
}

// Key returns the callback kind of the current update.
func Key(c tele.Context) string {
	k, _ := Split(Data(c))
	return k
}

// Join builds callback data from a kind and its arguments.
func Join(kind string, args ...string) string {
	if len(args) == 0 {
		return kind
	}
	return kind + Sep + strings.Join(args, Sep)
}
