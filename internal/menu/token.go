package menu

import (
	"fmt"

	"github.com/m3rciful/shopbot/core/telegram/callbacks"
	"github.com/m3rciful/shopbot/internal/domain"
)

// Kind names a navigation target. Its string form prefixes callback data.
type Kind string

const (
	KindRoot         Kind = "root"
	KindNews         Kind = "news"
	KindReference    Kind = "reference"
	KindHelp         Kind = "help"
	KindCategoryList Kind = "categoryList"
	KindCategory     Kind = "category"
	KindService      Kind = "service"
	KindCartAdd      Kind = "cartAdd"
	KindCartRemove   Kind = "cartRemove"
	KindCartView     Kind = "cartView"
)

// Kinds lists every token kind in menu order.
var Kinds = []Kind{
	KindRoot, KindNews, KindReference, KindHelp, KindCategoryList,
	KindCategory, KindService, KindCartAdd, KindCartRemove, KindCartView,
}

// arity is the number of id arguments each kind carries.
var arity = map[Kind]int{
	KindRoot:         0,
	KindNews:         0,
	KindReference:    0,
	KindHelp:         0,
	KindCategoryList: 0,
	KindCartView:     0,
	KindCategory:     1,
	KindCartAdd:      1,
	KindCartRemove:   1,
	KindService:      2,
}

// Token is a decoded navigation target. Only the ids relevant to Kind are set.
type Token struct {
	Kind       Kind
	CategoryID int64
	ServiceID  int64
}

// Root opens the main menu.
func Root() Token { return Token{Kind: KindRoot} }

// Simple builds a token for an argument-less kind.
func Simple(k Kind) Token { return Token{Kind: k} }

// Category opens the service listing of a category.
func Category(id int64) Token { return Token{Kind: KindCategory, CategoryID: id} }

// Service opens the detail page of a service.
func Service(categoryID, serviceID int64) Token {
	return Token{Kind: KindService, CategoryID: categoryID, ServiceID: serviceID}
}

// CartAdd adds one unit of a service.
func CartAdd(serviceID int64) Token { return Token{Kind: KindCartAdd, ServiceID: serviceID} }

// CartRemove removes one unit of a service.
func CartRemove(serviceID int64) Token { return Token{Kind: KindCartRemove, ServiceID: serviceID} }

// String encodes the token as callback data.
func (t Token) String() string {
	switch t.Kind {
	case KindCategory:
		return callbacks.Join(string(t.Kind), callbacks.FormatInt64(t.CategoryID))
	case KindService:
		return callbacks.Join(string(t.Kind), callbacks.FormatInt64(t.CategoryID), callbacks.FormatInt64(t.ServiceID))
	case KindCartAdd, KindCartRemove:
		return callbacks.Join(string(t.Kind), callbacks.FormatInt64(t.ServiceID))
	}
	return string(t.Kind)
}

// ParseToken decodes callback data. Anything malformed is domain.ErrUnrecognizedToken.
func ParseToken(raw string) (Token, error) {
	key, payload := callbacks.Split(raw)
	kind := Kind(key)
	n, ok := arity[kind]
	if !ok {
		return Token{}, fmt.Errorf("token %q: %w", raw, domain.ErrUnrecognizedToken)
	}
	ids, err := callbacks.Int64Args(payload, n)
	if err != nil {
		return Token{}, fmt.Errorf("token %q: %w", raw, domain.ErrUnrecognizedToken)
	}

	t := Token{Kind: kind}
	switch kind {
	case KindCategory:
		t.CategoryID = ids[0]
	case KindService:
		t.CategoryID, t.ServiceID = ids[0], ids[1]
	case KindCartAdd, KindCartRemove:
		t.ServiceID = ids[0]
	}
	return t, nil
}
