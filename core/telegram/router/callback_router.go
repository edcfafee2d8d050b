package router

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/middleware"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry by callback kind.
// Handlers may answer the callback themselves (e.g. with a toast); otherwise it is
// acknowledged silently once the handler returns.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		defer tghelpers.Acknowledge(c)

		kind := callbacks.Key(c)
		if h, ok := reg.GetCallback(kind); ok && h != nil {
			return newSummary("callback."+kind, slog.String("cb_key", kind)).run(c, h)
		}
		notFound := opts.NotFound
		if notFound == nil {
			notFound = reg.CallbackNotFound()
		}
		return newSummary("callback."+kind,
			slog.String("cb_key", kind),
			slog.String("reason", "not_found"),
		).run(c, notFound)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
