package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/menu"
	"github.com/m3rciful/shopbot/internal/news"
	"github.com/m3rciful/shopbot/internal/storage/memory"
)

type stubNews []news.Item

func (s stubNews) Fetch(context.Context) []news.Item { return s }

func newShop(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.NewStore()
	st.PutCategory(domain.Category{ID: 1, Name: "Visas"})
	st.PutCategory(domain.Category{ID: 2, Name: "Empty"})
	require.NoError(t, st.PutService(domain.Service{ID: 10, Name: "A", Price: decimal.NewFromInt(5), CategoryID: 1}))
	require.NoError(t, st.PutService(domain.Service{ID: 11, Name: "B", Price: decimal.NewFromInt(8), CategoryID: 1}))
	return st
}

func newDispatcher(st *memory.Store, src NewsSource) *Dispatcher {
	return NewDispatcher(st, menu.NewBuilder(menu.Content{Currency: "$"}), src)
}

func quantity(t *testing.T, st *memory.Store, user, service int64) int {
	t.Helper()
	sess, err := st.Open(context.Background())
	require.NoError(t, err)
	defer sess.Close()
	q, err := sess.Quantity(context.Background(), user, service)
	require.NoError(t, err)
	return q
}

func TestDispatchCartFlow(t *testing.T) {
	st := newShop(t)
	d := newDispatcher(st, nil)
	ctx := context.Background()

	reply, err := d.HandleRaw(ctx, 42, "cartAdd:10")
	require.NoError(t, err)
	assert.Equal(t, NoticeAdded, reply.Notice)
	assert.Contains(t, reply.Page.Text, "In your cart: 1")
	assert.Equal(t, 1, quantity(t, st, 42, 10))

	_, err = d.HandleRaw(ctx, 42, "cartAdd:10")
	require.NoError(t, err)
	reply, err = d.HandleRaw(ctx, 42, "cartRemove:10")
	require.NoError(t, err)
	assert.Equal(t, NoticeRemoved, reply.Notice)
	assert.Contains(t, reply.Page.Text, "In your cart: 1")

	reply, err = d.Handle(ctx, 42, menu.Simple(menu.KindCartView))
	require.NoError(t, err)
	assert.Contains(t, reply.Page.Text, "A × 1 = $5.00")
	assert.Zero(t, st.OpenSessions())
}

func TestDispatchStaticPagesSkipStore(t *testing.T) {
	st := newShop(t)
	st.Fail = errors.New("down")
	d := newDispatcher(st, stubNews{{Title: "T", URL: "https://e.x/t"}})

	for _, tok := range []menu.Token{menu.Root(), menu.Simple(menu.KindHelp), menu.Simple(menu.KindReference)} {
		_, err := d.Handle(context.Background(), 42, tok)
		require.NoError(t, err, tok.String())
	}
	reply, err := d.Handle(context.Background(), 42, menu.Simple(menu.KindNews))
	require.NoError(t, err)
	assert.Contains(t, reply.Page.Text, `<a href="https://e.x/t">T</a>`)
}

func TestDispatchNewsWithoutItems(t *testing.T) {
	d := newDispatcher(newShop(t), stubNews(nil))
	reply, err := d.Handle(context.Background(), 42, menu.Simple(menu.KindNews))
	require.NoError(t, err)
	assert.Equal(t, menu.TextNoNews, reply.Page.Text)
}

func TestDispatchRecoverableErrorsGetFallback(t *testing.T) {
	st := newShop(t)
	d := newDispatcher(st, nil)
	fallback := menu.NewBuilder(menu.Content{}).Fallback()

	for _, raw := range []string{"nonsense", "category:99", "service:1:99", "service:2:10", "cartAdd:99"} {
		reply, err := d.HandleRaw(context.Background(), 42, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, fallback, reply.Page, raw)
		assert.Empty(t, reply.Notice, raw)
	}
	assert.Zero(t, quantity(t, st, 42, 99))
	assert.Zero(t, st.OpenSessions())
}

func TestDispatchEmptyCategoryIsNotAnError(t *testing.T) {
	d := newDispatcher(newShop(t), nil)
	reply, err := d.HandleRaw(context.Background(), 42, "category:2")
	require.NoError(t, err)
	assert.Contains(t, reply.Page.Text, menu.TextNoServices)
}

func TestDispatchStoreFailureRendersFailurePage(t *testing.T) {
	st := newShop(t)
	st.Fail = errors.New("connection refused")
	d := newDispatcher(st, nil)

	reply, err := d.HandleRaw(context.Background(), 42, "categoryList")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, menu.TextFailure, reply.Page.Text)
	assert.Equal(t, "STORE_UNAVAILABLE", errCode(err))
}
