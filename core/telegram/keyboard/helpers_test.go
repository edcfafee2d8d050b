package keyboard

import "testing"

func TestInlineButtonsOnePerRow(t *testing.T) {
	m := InlineButtons([]InlineBtn{{Text: "A", Data: "category:1"}, {Text: "B", Data: "root"}})
	if len(m.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.InlineKeyboard))
	}
	if got := m.InlineKeyboard[0][0]; got.Text != "A" || got.Data != "category:1" {
		t.Fatalf("first button = %+v", got)
	}
}

func TestInlineButtonsRowsSkipsEmptyRows(t *testing.T) {
	m := InlineButtonsRows([]InlineBtn{{Text: "1", Data: "a"}, {Text: "2", Data: "b"}}, nil)
	if len(m.InlineKeyboard) != 1 || len(m.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected layout: %+v", m.InlineKeyboard)
	}
}
