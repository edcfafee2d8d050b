package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/shopbot/core/telegram/format"
	"github.com/m3rciful/shopbot/internal/domain"
	"github.com/m3rciful/shopbot/internal/news"
	"github.com/m3rciful/shopbot/internal/storage"
)

// Button labels.
const (
	LabelShop       = "Service Shop"
	LabelNews       = "News"
	LabelReference  = "Spainopedia"
	LabelAbout      = "About us"
	LabelMainMenu   = "← Main menu"
	LabelCategories = "← Categories"
	LabelServices   = "← Services"
	LabelAddOne     = "➕ Add one"
	LabelRemoveOne  = "➖ Remove one"
	LabelViewCart   = "🛒 View cart"
)

// Static page texts.
const (
	TextEmptyCart  = "Your cart is empty."
	TextNoNews     = "No news right now."
	TextNoServices = "No services in this category yet."
	TextUnknown    = "This section is unavailable. Please start again from the main menu."
	TextFailure    = "Something went wrong. Please try again later."
)

// Content holds operator-provided page texts. Reference and Help are trusted HTML.
type Content struct {
	Welcome   string
	Reference string
	Help      string
	Currency  string
}

// Builder renders pages. It holds no state besides Content.
type Builder struct {
	content Content
}

// NewBuilder fills empty content fields with defaults.
func NewBuilder(c Content) *Builder {
	if strings.TrimSpace(c.Welcome) == "" {
		c.Welcome = "Welcome! Choose a section:"
	}
	if strings.TrimSpace(c.Reference) == "" {
		c.Reference = "Reference materials are coming soon."
	}
	if strings.TrimSpace(c.Help) == "" {
		c.Help = "We help with paperwork in Spain."
	}
	if c.Currency == "" {
		c.Currency = "€"
	}
	return &Builder{content: c}
}

func mainMenu() Choice   { return Choice{Label: LabelMainMenu, Token: Root()} }
func categories() Choice { return Choice{Label: LabelCategories, Token: Simple(KindCategoryList)} }

// Root is the main menu.
func (b *Builder) Root() Page {
	return Page{
		Text: format.Escape(b.content.Welcome),
		Choices: []Choice{
			{Label: LabelShop, Token: Simple(KindCategoryList)},
			{Label: LabelNews, Token: Simple(KindNews)},
			{Label: LabelReference, Token: Simple(KindReference)},
			{Label: LabelAbout, Token: Simple(KindHelp)},
		},
	}
}

// Reference is the static reference page.
func (b *Builder) Reference() Page {
	return Page{Text: b.content.Reference, Choices: []Choice{mainMenu()}}
}

// Help is the static about page.
func (b *Builder) Help() Page {
	return Page{Text: b.content.Help, Choices: []Choice{mainMenu()}}
}

// Fallback is shown for unknown tokens and vanished catalog entries.
func (b *Builder) Fallback() Page {
	return Page{Text: TextUnknown, Choices: []Choice{mainMenu()}}
}

// Failure is shown when the store cannot serve the request.
func (b *Builder) Failure() Page {
	return Page{Text: TextFailure, Choices: []Choice{mainMenu()}}
}

// Categories lists every category.
func (b *Builder) Categories(ctx context.Context, cat storage.Catalog) (Page, error) {
	list, err := cat.ListCategories(ctx)
	if err != nil {
		return Page{}, err
	}
	lines := []string{format.Bold(LabelShop)}
	if len(list) == 0 {
		lines = append(lines, "No categories yet.")
	} else {
		lines = append(lines, "Choose a category:")
	}
	choices := make([]Choice, 0, len(list)+1)
	for _, c := range list {
		choices = append(choices, Choice{Label: c.Name, Token: Category(c.ID)})
	}
	return Page{Text: format.Lines(lines...), Choices: append(choices, mainMenu())}, nil
}

// Services lists the services of one category. An unknown category is domain.ErrNotFound.
func (b *Builder) Services(ctx context.Context, cat storage.Catalog, categoryID int64) (Page, error) {
	category, err := cat.GetCategory(ctx, categoryID)
	if err != nil {
		return Page{}, err
	}
	list, err := cat.ListServices(ctx, categoryID)
	if err != nil {
		return Page{}, err
	}

	lines := []string{format.Bold(category.Name)}
	if len(list) == 0 {
		lines = append(lines, TextNoServices)
	} else {
		lines = append(lines, "Choose a service:")
	}
	choices := make([]Choice, 0, len(list)+1)
	for _, s := range list {
		choices = append(choices, Choice{
			Label: fmt.Sprintf("%s · %s", s.Name, b.price(s.Price)),
			Token: Service(categoryID, s.ID),
		})
	}
	return Page{Text: format.Lines(lines...), Choices: append(choices, categories())}, nil
}

// ServiceDetail shows one service and the units the user holds.
// A category id that does not own the service is domain.ErrNotFound;
// pass 0 to skip that check.
func (b *Builder) ServiceDetail(ctx context.Context, s storage.Session, userID, categoryID, serviceID int64) (Page, error) {
	svc, err := s.GetService(ctx, serviceID)
	if err != nil {
		return Page{}, err
	}
	if categoryID != 0 && svc.CategoryID != categoryID {
		return Page{}, fmt.Errorf("service %d in category %d: %w", serviceID, categoryID, domain.ErrNotFound)
	}
	qty, err := s.Quantity(ctx, userID, serviceID)
	if err != nil {
		return Page{}, err
	}

	parts := []string{format.Bold(svc.Name)}
	if d := strings.TrimSpace(svc.Description); d != "" {
		parts = append(parts, format.Escape(d))
	}
	parts = append(parts, "",
		"Price: "+b.price(svc.Price),
		fmt.Sprintf("In your cart: %d", qty),
	)
	text := strings.Join(parts, "\n")

	return Page{
		Text: text,
		Choices: []Choice{
			{Label: LabelAddOne, Token: CartAdd(svc.ID)},
			{Label: LabelRemoveOne, Token: CartRemove(svc.ID)},
			{Label: LabelServices, Token: Category(svc.CategoryID)},
			{Label: LabelViewCart, Token: Simple(KindCartView)},
		},
	}, nil
}

// Cart lists the user's cart with subtotals and a total.
func (b *Builder) Cart(ctx context.Context, cart storage.Cart, userID int64) (Page, error) {
	lines, err := cart.ListItems(ctx, userID)
	if err != nil {
		return Page{}, err
	}
	if len(lines) == 0 {
		return Page{Text: TextEmptyCart, Choices: []Choice{categories()}}, nil
	}

	text := []string{format.Bold("Your cart")}
	choices := make([]Choice, 0, len(lines)+1)
	for _, l := range lines {
		text = append(text, fmt.Sprintf("%s × %d = %s",
			format.Escape(l.Service.Name), l.Quantity, b.price(l.Subtotal())))
		choices = append(choices, Choice{
			Label: l.Service.Name,
			Token: Service(l.Service.CategoryID, l.Service.ID),
		})
	}
	text = append(text, "", "<b>Total: "+b.price(domain.CartTotal(lines))+"</b>")
	return Page{Text: strings.Join(text, "\n"), Choices: append(choices, categories())}, nil
}

// News renders one link per headline.
func (b *Builder) News(items []news.Item) Page {
	if len(items) == 0 {
		return Page{Text: TextNoNews, Choices: []Choice{mainMenu()}}
	}
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, format.Bold(LabelNews))
	for _, it := range items {
		lines = append(lines, "• "+format.Link(it.Title, it.URL))
	}
	return Page{Text: strings.Join(lines, "\n"), Choices: []Choice{mainMenu()}}
}

func (b *Builder) price(d decimal.Decimal) string {
	return format.Escape(b.content.Currency) + d.StringFixed(2)
}
