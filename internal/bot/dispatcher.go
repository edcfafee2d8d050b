// Package bot maps inbound chat events onto menu pages and cart mutations.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/menu"
	"github.com/m3rciful/shopbot/internal/news"
	"github.com/m3rciful/shopbot/internal/storage"
)

// Toast texts shown after cart mutations.
const (
	NoticeAdded   = "Added to cart"
	NoticeRemoved = "Removed from cart"
)

// NewsSource yields the current headlines; failures surface as no items.
type NewsSource interface {
	Fetch(ctx context.Context) []news.Item
}

// Reply is what the transport sends back: a page and an optional toast.
type Reply struct {
	Page   menu.Page
	Notice string
}

// Dispatcher serves one token per call. Calls may run concurrently.
type Dispatcher struct {
	store storage.Store
	pages *menu.Builder
	news  NewsSource
}

// NewDispatcher wires the dispatcher dependencies.
func NewDispatcher(store storage.Store, pages *menu.Builder, src NewsSource) *Dispatcher {
	return &Dispatcher{store: store, pages: pages, news: src}
}

// HandleRaw decodes callback data and serves it.
func (d *Dispatcher) HandleRaw(ctx context.Context, userID int64, raw string) (Reply, error) {
	tok, err := menu.ParseToken(raw)
	if err != nil {
		return d.fallback(ctx, raw, err), nil
	}
	return d.Handle(ctx, userID, tok)
}

// Handle serves a decoded token. Unknown or vanished targets yield the fallback
// page and no error. Store failures yield the failure page and the error.
func (d *Dispatcher) Handle(ctx context.Context, userID int64, tok menu.Token) (Reply, error) {
	reply, err := d.serve(ctx, userID, tok)
	if err == nil {
		return reply, nil
	}
	if domain.Recoverable(err) {
		return d.fallback(ctx, tok.String(), err), nil
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelError, "dispatch.failed",
		slog.String("status", "fail"),
		slog.String("token", tok.String()),
		slog.Int64("user_id", userID),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		slog.String("err_code", errCode(err)),
	)
	return Reply{Page: d.pages.Failure()}, err
}

func (d *Dispatcher) fallback(ctx context.Context, raw string, err error) Reply {
	logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "dispatch.fallback",
		slog.String("status", "skip"),
		slog.String("token", logger.SanitizeLimit(raw, 128)),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		slog.String("err_code", errCode(err)),
	)
	return Reply{Page: d.pages.Fallback()}
}

func (d *Dispatcher) serve(ctx context.Context, userID int64, tok menu.Token) (Reply, error) {
	switch tok.Kind {
	case menu.KindRoot:
		return Reply{Page: d.pages.Root()}, nil
	case menu.KindReference:
		return Reply{Page: d.pages.Reference()}, nil
	case menu.KindHelp:
		return Reply{Page: d.pages.Help()}, nil
	case menu.KindNews:
		var items []news.Item
		if d.news != nil {
			items = d.news.Fetch(ctx)
		}
		return Reply{Page: d.pages.News(items)}, nil
	case menu.KindCategoryList, menu.KindCategory, menu.KindService,
		menu.KindCartAdd, menu.KindCartRemove, menu.KindCartView:
	default:
		return Reply{}, fmt.Errorf("token kind %q: %w", tok.Kind, domain.ErrUnrecognizedToken)
	}

	sess, err := d.store.Open(ctx)
	if err != nil {
		return Reply{}, err
	}
	defer sess.Close()

	var (
		page   menu.Page
		notice string
	)
	switch tok.Kind {
	case menu.KindCategoryList:
		page, err = d.pages.Categories(ctx, sess)
	case menu.KindCategory:
		page, err = d.pages.Services(ctx, sess, tok.CategoryID)
	case menu.KindService:
		page, err = d.pages.ServiceDetail(ctx, sess, userID, tok.CategoryID, tok.ServiceID)
	case menu.KindCartView:
		page, err = d.pages.Cart(ctx, sess, userID)
	case menu.KindCartAdd:
		if err = sess.AddItem(ctx, userID, tok.ServiceID, 1); err == nil {
			notice = NoticeAdded
			page, err = d.pages.ServiceDetail(ctx, sess, userID, 0, tok.ServiceID)
		}
	case menu.KindCartRemove:
		if err = sess.RemoveItem(ctx, userID, tok.ServiceID, 1); err == nil {
			notice = NoticeRemoved
			page, err = d.pages.ServiceDetail(ctx, sess, userID, 0, tok.ServiceID)
		}
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Page: page, Notice: notice}, nil
}

func errCode(err error) string {
	if code := domain.CodeOf(err); code != "" {
		return code
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "CONTEXT_DONE"
	}
	return "UNKNOWN_ERROR"
}
