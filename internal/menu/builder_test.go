package menu

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/news"
	"github.com/m3rciful/shopbot/internal/storage"
	"github.com/m3rciful/shopbot/internal/storage/memory"
)

func newCatalog(t *testing.T) (storage.Session, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	st.PutCategory(domain.Category{ID: 1, Name: "Visas <EU>"})
	st.PutCategory(domain.Category{ID: 2, Name: "Empty"})
	require.NoError(t, st.PutService(domain.Service{ID: 10, Name: "A", Price: decimal.NewFromInt(5), Description: "Fast & easy", CategoryID: 1}))
	require.NoError(t, st.PutService(domain.Service{ID: 11, Name: "B", Price: decimal.NewFromInt(8), CategoryID: 1}))
	sess, err := st.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess, st
}

func tokens(p Page) []string {
	out := make([]string, 0, len(p.Choices))
	for _, c := range p.Choices {
		out = append(out, c.Token.String())
	}
	return out
}

func TestRootHasFourFixedChoices(t *testing.T) {
	p := NewBuilder(Content{}).Root()
	assert.Equal(t, []string{"categoryList", "news", "reference", "help"}, tokens(p))
	assert.Equal(t, LabelReference, p.Choices[2].Label)
}

func TestCategoriesListing(t *testing.T) {
	sess, _ := newCatalog(t)
	p, err := NewBuilder(Content{}).Categories(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, []string{"category:1", "category:2", "root"}, tokens(p))
	assert.Equal(t, "Visas <EU>", p.Choices[0].Label)
}

func TestServicesListingUsesCategoryName(t *testing.T) {
	sess, _ := newCatalog(t)
	p, err := NewBuilder(Content{}).Services(context.Background(), sess, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Text, "<b>Visas &lt;EU&gt;</b>"), p.Text)
	assert.Equal(t, []string{"service:1:10", "service:1:11", "categoryList"}, tokens(p))
	assert.Equal(t, "A · €5.00", p.Choices[0].Label)
}

func TestServicesListingEmptyAndUnknown(t *testing.T) {
	sess, _ := newCatalog(t)
	b := NewBuilder(Content{})

	p, err := b.Services(context.Background(), sess, 2)
	require.NoError(t, err)
	assert.Contains(t, p.Text, "<b>Empty</b>")
	assert.Contains(t, p.Text, TextNoServices)
	assert.Equal(t, []string{"categoryList"}, tokens(p))

	_, err = b.Services(context.Background(), sess, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceDetail(t *testing.T) {
	sess, _ := newCatalog(t)
	ctx := context.Background()
	require.NoError(t, sess.AddItem(ctx, 42, 10, 2))

	p, err := NewBuilder(Content{Currency: "$"}).ServiceDetail(ctx, sess, 42, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "<b>A</b>\nFast &amp; easy\n\nPrice: $5.00\nIn your cart: 2", p.Text)
	assert.Equal(t, []string{"cartAdd:10", "cartRemove:10", "category:1", "cartView"}, tokens(p))
}

func TestServiceDetailWrongCategoryIsNotFound(t *testing.T) {
	sess, _ := newCatalog(t)
	_, err := NewBuilder(Content{}).ServiceDetail(context.Background(), sess, 42, 2, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartPage(t *testing.T) {
	sess, _ := newCatalog(t)
	ctx := context.Background()
	b := NewBuilder(Content{Currency: "$"})

	p, err := b.Cart(ctx, sess, 42)
	require.NoError(t, err)
	assert.Equal(t, TextEmptyCart, p.Text)
	assert.Equal(t, []string{"categoryList"}, tokens(p))

	require.NoError(t, sess.AddItem(ctx, 42, 10, 3))
	require.NoError(t, sess.AddItem(ctx, 42, 11, 1))
	p, err = b.Cart(ctx, sess, 42)
	require.NoError(t, err)
	assert.Equal(t, "<b>Your cart</b>\nA × 3 = $15.00\nB × 1 = $8.00\n\n<b>Total: $23.00</b>", p.Text)
	assert.Equal(t, []string{"service:1:10", "service:1:11", "categoryList"}, tokens(p))
}

func TestNewsPage(t *testing.T) {
	b := NewBuilder(Content{})
	p := b.News(nil)
	assert.Equal(t, TextNoNews, p.Text)

	p = b.News([]news.Item{{Title: "One", URL: "https://e.x/1"}, {Title: "Two", URL: "https://e.x/2"}})
	assert.Contains(t, p.Text, `<a href="https://e.x/1">One</a>`)
	assert.Contains(t, p.Text, `<a href="https://e.x/2">Two</a>`)
	assert.Equal(t, []string{"root"}, tokens(p))
}

func TestMarkupOneButtonPerRow(t *testing.T) {
	m := NewBuilder(Content{}).Root().Markup()
	require.Len(t, m.InlineKeyboard, 4)
	assert.Equal(t, "categoryList", m.InlineKeyboard[0][0].Data)
}
