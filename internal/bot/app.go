package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/buildinfo"
	coreconfig "github.com/m3rciful/shopbot/core/config"
	"github.com/m3rciful/shopbot/core/logger"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	"github.com/m3rciful/shopbot/core/telegram/commands"
	"github.com/m3rciful/shopbot/core/telegram/format"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/router"
	"github.com/m3rciful/shopbot/core/telegram/ui"
	"github.com/m3rciful/shopbot/internal/menu"
	"github.com/m3rciful/shopbot/internal/storage"
)

// Chat texts outside the menu pages.
const (
	TextHint        = "I only understand buttons and commands. Send /menu to open the main menu."
	TextRateLimited = "Too many requests, please slow down."
	TextAdminOnly   = "This command is for administrators only."
)

// App binds the dispatcher to Telegram.
type App struct {
	cfg   *coreconfig.Config
	store storage.Store
	disp  *Dispatcher
}

// NewApp builds the Telegram application.
func NewApp(cfg *coreconfig.Config, store storage.Store, disp *Dispatcher) *App {
	return &App{cfg: cfg, store: store, disp: disp}
}

// Registry registers commands and one callback handler per token kind.
func (a *App) Registry() (*coretelegram.Registry, error) {
	reg := coretelegram.NewRegistry()

	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: a.onCommand(menu.Root()), Description: "Open the main menu", Hidden: true}},
		{"/menu", commands.Command{Handler: a.onCommand(menu.Root()), Description: "Main menu"}},
		{"/shop", commands.Command{Handler: a.onCommand(menu.Simple(menu.KindCategoryList)), Description: "Service shop", Aliases: []string{"catalog"}}},
		{"/cart", commands.Command{Handler: a.onCommand(menu.Simple(menu.KindCartView)), Description: "Your cart"}},
		{"/news", commands.Command{Handler: a.onCommand(menu.Simple(menu.KindNews)), Description: "Latest news"}},
		{"/help", commands.Command{Handler: a.onCommand(menu.Simple(menu.KindHelp)), Description: "About us"}},
		{"/status", commands.Command{Handler: a.onStatus, Description: "Bot status", AdminOnly: true, Hidden: true}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return nil, fmt.Errorf("register command: %w", err)
		}
	}

	for _, k := range menu.Kinds {
		if err := reg.RegisterCallback(string(k), a.onCallback); err != nil {
			return nil, fmt.Errorf("register callback %s: %w", k, err)
		}
	}
	return reg, nil
}

// TelegramRunOptions assembles routes and middleware for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return coretelegram.RunOptions{}, err
	}
	fb := ui.FromProvider(a)
	reg.SetCallbackNotFound(fb.Callback)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error { return tghelpers.SendText(c, TextAdminOnly) },
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: fb.Callback}))
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{
		UnknownText:     fb.Text,
		UnknownDocument: fb.Document,
	})...)

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, a.onLimited),
		Routes:      routes,
	}, nil
}

// UnknownText answers free text with a hint.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error { return tghelpers.SendText(c, TextHint) }
}

// UnknownDocument answers uploads with the same hint.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return a.UnknownText()
}

// UnknownCallback renders the fallback page for unregistered callback kinds.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return a.onCallback
}

func (a *App) onCommand(tok menu.Token) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		reply, err := a.disp.Handle(ctx, senderID(c), tok)
		if sendErr := tghelpers.SendHTML(c, reply.Page.Text, reply.Page.Markup()); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return err
	}
}

func (a *App) onCallback(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := a.disp.HandleRaw(ctx, senderID(c), callbacks.Data(c))
	if reply.Notice != "" {
		if respErr := tghelpers.Respond(c, reply.Notice); respErr != nil {
			logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "callback.respond",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(respErr.Error(), 256)),
			)
		}
	}
	if sendErr := tghelpers.EditOrSendHTML(c, reply.Page.Text, reply.Page.Markup()); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	return err
}

func (a *App) onStatus(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	db := "ok"
	if err := a.store.Ping(pingCtx); err != nil {
		db = "unavailable"
		logger.LogEvent(ctx, logger.DB, slog.LevelWarn, "db.ping",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}

	lines := []string{
		format.Bold("Status"),
		"Version: " + format.Escape(buildinfo.Version),
		"Commit: " + format.Escape(buildinfo.Commit),
	}
	if buildinfo.Date != "" {
		lines = append(lines, "Built: "+format.Escape(buildinfo.Date))
	}
	lines = append(lines, fmt.Sprintf("Database: %s (%d ms)", db, time.Since(start).Milliseconds()))
	return tghelpers.SendHTML(c, strings.Join(lines, "\n"))
}

func (a *App) onLimited(c tele.Context) error {
	return tghelpers.Respond(c, TextRateLimited)
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
