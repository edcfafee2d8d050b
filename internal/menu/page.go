// Package menu turns catalog and cart reads into chat pages.
package menu

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/telegram/keyboard"
)

// Choice is one button of a page.
type Choice struct {
	Label string
	Token Token
}

// Page is a rendered screen: HTML text plus ordered choices.
type Page struct {
	Text    string
	Choices []Choice
}

// Markup renders the choices as an inline keyboard, one button per row.
func (p Page) Markup() *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(p.Choices))
	for _, c := range p.Choices {
		btns = append(btns, keyboard.InlineBtn{Text: c.Label, Data: c.Token.String()})
	}
	return keyboard.InlineButtons(btns)
}
