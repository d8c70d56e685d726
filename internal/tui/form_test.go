package tui

import (
	"testing"

	"stacks-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFormFocusCycleWraps(t *testing.T) {
	f := newItemForm(1, nil)
	if f.focus != formFieldTitle {
		t.Fatalf("new form must focus the title field, got %d", f.focus)
	}

	for i := 0; i < formFieldCount; i++ {
		f.update(tea.KeyMsg{Type: tea.KeyTab})
	}
	if f.focus != formFieldTitle {
		t.Fatalf("tab must wrap back to the first field, got %d", f.focus)
	}

	f.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if f.focus != formFieldExtra {
		t.Fatalf("shift+tab from the first field must wrap to the last, got %d", f.focus)
	}
}

func TestFormEnterAdvancesExceptInDescription(t *testing.T) {
	f := newItemForm(1, nil)

	f.update(tea.KeyMsg{Type: tea.KeyEnter})
	if f.focus != formFieldISBN {
		t.Fatalf("enter must advance past a single-line field, got %d", f.focus)
	}

	f.setFocus(formFieldDesc)
	f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	f.update(tea.KeyMsg{Type: tea.KeyEnter})
	f.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	if f.focus != formFieldDesc {
		t.Fatalf("enter inside the description must not move focus, got %d", f.focus)
	}
	if got := f.desc.Value(); got != "a\nb" {
		t.Fatalf("enter inside the description must insert a newline, got %q", got)
	}
}

func TestFormReadItem(t *testing.T) {
	it := model.Item{
		ID:        4,
		Title:     "T",
		ISBN:      "978",
		Author:    "A",
		Publisher: "P",
		Desc:      "about",
		Cover:     "cover.png",
		Price:     9.5,
		Extra:     "x",
	}

	f := newItemForm(2, &it)
	if f.isCreate() {
		t.Fatalf("a pre-filled form is an edit session")
	}
	if got := f.inputs[inputIdx(formFieldPrice)].Value(); got != "9.50" {
		t.Fatalf("price must pre-fill with two fraction digits, got %q", got)
	}

	f.inputs[inputIdx(formFieldPrice)].SetValue("12")
	got, err := f.readItem()
	if err != nil {
		t.Fatalf("readItem: %v", err)
	}
	it.Price = 12
	if got != it {
		t.Fatalf("readItem mismatch:\n got %+v\nwant %+v", got, it)
	}
}

func TestFormRejectsBadPrice(t *testing.T) {
	f := newItemForm(1, nil)
	f.inputs[inputIdx(formFieldPrice)].SetValue("free")
	if _, err := f.readItem(); err == nil {
		t.Fatalf("expected a price validation error")
	}

	f.inputs[inputIdx(formFieldPrice)].SetValue("-1")
	if _, err := f.readItem(); err == nil {
		t.Fatalf("expected a negative price to be rejected")
	}
}

func TestFormTitleFollowsIntent(t *testing.T) {
	if got := newItemForm(1, nil).title(); got != "Add item" {
		t.Fatalf("create title: %q", got)
	}
	it := model.Item{ID: 9}
	if got := newItemForm(2, &it).title(); got != "Edit item" {
		t.Fatalf("edit title: %q", got)
	}
}
