package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/commands"
)

var (
	// ErrInvalidRegistration is returned for empty names, missing handlers or commands without a leading slash.
	ErrInvalidRegistration = errors.New("telegram: invalid registration")
	// ErrDuplicate is returned when a command, alias or callback kind is already taken.
	ErrDuplicate = errors.New("telegram: already registered")
)

// CommandEntry is a registered command together with its canonical name.
type CommandEntry struct {
	Name string
	commands.Command
}

// Registry is the set of commands and callback handlers a bot serves.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	aliases   map[string]string
	callbacks map[string]tele.HandlerFunc
	notFound  tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		notFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

// commandKey normalizes "/cart@shop_bot", "cart" and "/cart" to "/cart".
func commandKey(name string) string {
	name = strings.TrimSpace(name)
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	if name != "" && !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

// RegisterCommand adds cmd under name, which must start with a slash.
// Aliases may be given with or without the slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if len(name) < 2 || name[0] != '/' || cmd.Handler == nil || cmd.Description == "" {
		return r.reject("command", name, ErrInvalidRegistration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := []string{name}
	for _, alias := range cmd.Aliases {
		if alias = commandKey(alias); alias != "" {
			keys = append(keys, alias)
		}
	}
	for _, key := range keys {
		if _, taken := r.commands[key]; taken {
			return r.reject("command", key, ErrDuplicate)
		}
		if _, taken := r.aliases[key]; taken {
			return r.reject("command", key, ErrDuplicate)
		}
	}
	r.commands[name] = cmd
	for _, alias := range keys[1:] {
		r.aliases[alias] = name
	}
	return nil
}

// LookupCommand resolves a command or alias to its canonical name.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	key := commandKey(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	cmd, ok := r.commands[key]
	if !ok {
		return "", commands.Command{}, false
	}
	return key, cmd, true
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []CommandEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CommandEntry, 0, len(r.commands))
	for name, cmd := range r.commands {
		out = append(out, CommandEntry{Name: name, Command: cmd})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListCommands converts registered commands for the Telegram command menu.
// With visibleOnly, hidden and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for _, e := range r.Commands() {
		if visibleOnly && (e.Hidden || e.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(e.Name, "/"), Description: e.Description})
	}
	return list
}

// RegisterCallback binds handler to a callback kind.
func (r *Registry) RegisterCallback(kind string, handler tele.HandlerFunc) error {
	if kind == "" || handler == nil {
		return r.reject("callback", kind, ErrInvalidRegistration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.callbacks[kind]; taken {
		return r.reject("callback", kind, ErrDuplicate)
	}
	r.callbacks[kind] = handler
	return nil
}

// GetCallback returns the handler bound to kind.
func (r *Registry) GetCallback(kind string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[kind]
	return h, ok
}

// ListCallbacks returns the registered callback kinds in sorted order.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// SetCallbackNotFound replaces the handler for callbacks of unknown kind.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.notFound = h
	r.mu.Unlock()
}

// CallbackNotFound returns the handler for callbacks of unknown kind.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notFound
}

func (r *Registry) reject(what, name string, err error) error {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register."+what+".rejected",
		slog.String("name", name),
		slog.String("err", err.Error()),
	)
	return fmt.Errorf("%s %q: %w", what, name, err)
}

// SetupCommands publishes the visible commands to the Telegram command menu.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if len(list) == 0 {
		return
	}
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelDebug, "register.commands.set",
		slog.Int("count", len(list)),
	)
}
