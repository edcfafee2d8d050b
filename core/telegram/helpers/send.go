package helpers

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

const respondedKey = "cb_responded"

func htmlOptions(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		ReplyMarkup:           markup,
		DisableWebPagePreview: true,
	}
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	if len(opts) > 0 && opts[0] != nil {
		return c.Send(text, opts[0])
	}
	return c.Send(text)
}

// SendHTML sends a new message with HTML parse mode and optional reply markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return c.Send(text, htmlOptions(rm))
}

// EditOrSendHTML edits the message the callback came from, or sends a new one
// when there is nothing to edit.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	if c.Callback() == nil {
		return c.Send(text, htmlOptions(rm))
	}
	err := c.Edit(text, htmlOptions(rm))
	if err == nil || isNotModified(err) {
		return nil
	}
	return err
}

// isNotModified reports Telegram's rejection of an edit that changes nothing.
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

// Respond answers the current callback with a short toast. Subsequent calls are no-ops.
func Respond(c tele.Context, text string) error {
	if c.Callback() == nil {
		return nil
	}
	if done, _ := c.Get(respondedKey).(bool); done {
		return nil
	}
	c.Set(respondedKey, true)
	if text == "" {
		return c.Respond()
	}
	return c.Respond(&tele.CallbackResponse{Text: text})
}

// Acknowledge answers the callback silently unless a handler already did.
func Acknowledge(c tele.Context) {
	_ = Respond(c, "")
}
