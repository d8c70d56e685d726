package tui

import (
	"strings"

	"stacks-cli/internal/model"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// itemForm is one open-to-close session of the shared add/edit dialog.
//
// The session carries exactly one intent for its whole lifetime: editID == 0
// means "create", anything else means "edit that record". Confirmation is a
// single dispatch that switches on the stored intent, so reopening the dialog
// reassigns the intent instead of re-registering handlers; there is no stale
// handler to fire alongside the new one.
type itemForm struct {
	seq    int
	editID int64

	// Single-line fields in display order, with the description textarea
	// slotted between publisher and cover.
	inputs [7]textinput.Model
	desc   textarea.Model
	focus  int // 0..7; formFieldDesc is the textarea

	err string
}

const (
	formFieldTitle = iota
	formFieldISBN
	formFieldAuthor
	formFieldPublisher
	formFieldDesc
	formFieldCover
	formFieldPrice
	formFieldExtra
	formFieldCount
)

var formLabels = [formFieldCount]string{
	"Title", "ISBN", "Author", "Publisher", "Description", "Cover", "Price", "Extra",
}

// inputIdx maps a focus slot to its index in inputs; the textarea slot has
// no entry.
func inputIdx(field int) int {
	if field < formFieldDesc {
		return field
	}
	return field - 1
}

// newItemForm opens a form session. A nil initial means Create (all fields
// blank); otherwise Edit, pre-filled with the record's current values.
func newItemForm(seq int, initial *model.Item) *itemForm {
	f := &itemForm{seq: seq}

	for i := range f.inputs {
		in := textinput.New()
		in.CharLimit = 200
		in.Width = 40
		f.inputs[i] = in
	}
	f.inputs[inputIdx(formFieldTitle)].Placeholder = "Title"
	f.inputs[inputIdx(formFieldISBN)].Placeholder = "ISBN"
	f.inputs[inputIdx(formFieldAuthor)].Placeholder = "Author"
	f.inputs[inputIdx(formFieldPublisher)].Placeholder = "Publisher"
	f.inputs[inputIdx(formFieldCover)].Placeholder = "Cover URL or path"
	f.inputs[inputIdx(formFieldPrice)].Placeholder = "0.00"
	f.inputs[inputIdx(formFieldPrice)].CharLimit = 16
	f.inputs[inputIdx(formFieldExtra)].Placeholder = "Extra"

	f.desc = textarea.New()
	f.desc.Placeholder = "Description (markdown)"
	f.desc.CharLimit = 0
	f.desc.SetWidth(40)
	f.desc.SetHeight(4)
	f.desc.ShowLineNumbers = false

	if initial != nil {
		f.editID = initial.ID
		f.inputs[inputIdx(formFieldTitle)].SetValue(initial.Title)
		f.inputs[inputIdx(formFieldISBN)].SetValue(initial.ISBN)
		f.inputs[inputIdx(formFieldAuthor)].SetValue(initial.Author)
		f.inputs[inputIdx(formFieldPublisher)].SetValue(initial.Publisher)
		f.inputs[inputIdx(formFieldCover)].SetValue(initial.Cover)
		f.inputs[inputIdx(formFieldPrice)].SetValue(model.FormatPrice(initial.Price))
		f.inputs[inputIdx(formFieldExtra)].SetValue(initial.Extra)
		f.desc.SetValue(initial.Desc)
	}

	f.focus = formFieldTitle
	f.inputs[inputIdx(formFieldTitle)].Focus()
	return f
}

func (f *itemForm) title() string {
	if f.editID == 0 {
		return "Add item"
	}
	return "Edit item"
}

func (f *itemForm) isCreate() bool { return f.editID == 0 }

// readItem reads the drafted field values into an item record. The price is
// validated here so garbage never reaches the service.
func (f *itemForm) readItem() (model.Item, error) {
	price, err := model.ParsePrice(f.inputs[inputIdx(formFieldPrice)].Value())
	if err != nil {
		return model.Item{}, err
	}
	return model.Item{
		ID:        f.editID,
		Title:     f.inputs[inputIdx(formFieldTitle)].Value(),
		ISBN:      f.inputs[inputIdx(formFieldISBN)].Value(),
		Author:    f.inputs[inputIdx(formFieldAuthor)].Value(),
		Publisher: f.inputs[inputIdx(formFieldPublisher)].Value(),
		Desc:      f.desc.Value(),
		Cover:     f.inputs[inputIdx(formFieldCover)].Value(),
		Price:     price,
		Extra:     f.inputs[inputIdx(formFieldExtra)].Value(),
	}, nil
}

func (f *itemForm) setFocus(field int) {
	if field < 0 {
		field = formFieldCount - 1
	}
	if field >= formFieldCount {
		field = 0
	}
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.desc.Blur()

	f.focus = field
	if field == formFieldDesc {
		f.desc.Focus()
		return
	}
	f.inputs[inputIdx(field)].Focus()
}

// update routes a key to the focused field, handling focus movement. Confirm
// and cancel are the caller's concern; this only edits the draft.
func (f *itemForm) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		f.setFocus(f.focus + 1)
		return nil
	case "shift+tab":
		f.setFocus(f.focus - 1)
		return nil
	case "up", "down":
		// Inside the textarea these move the cursor instead.
		if f.focus != formFieldDesc {
			if msg.String() == "down" {
				f.setFocus(f.focus + 1)
			} else {
				f.setFocus(f.focus - 1)
			}
			return nil
		}
	case "enter":
		// Enter advances through single-line fields; the textarea keeps it
		// for newlines.
		if f.focus != formFieldDesc {
			f.setFocus(f.focus + 1)
			return nil
		}
	}

	var cmd tea.Cmd
	if f.focus == formFieldDesc {
		f.desc, cmd = f.desc.Update(msg)
		return cmd
	}
	i := inputIdx(f.focus)
	f.inputs[i], cmd = f.inputs[i].Update(msg)
	return cmd
}

func (f *itemForm) view(width int) string {
	bodyW := modalBodyWidth(width)
	labelSt := styleMuted()
	activeLabelSt := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	var b strings.Builder
	for field := 0; field < formFieldCount; field++ {
		st := labelSt
		if field == f.focus {
			st = activeLabelSt
		}
		b.WriteString(st.Render(formLabels[field]))
		b.WriteString("\n")
		if field == formFieldDesc {
			b.WriteString(f.desc.View())
		} else {
			b.WriteString(renderInputLine(bodyW-2, f.inputs[inputIdx(field)].View()))
		}
		b.WriteString("\n")
	}

	if strings.TrimSpace(f.err) != "" {
		b.WriteString("\n")
		b.WriteString(styleError().Width(bodyW).Render(f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleMuted().Width(bodyW).Render("tab: next field   ctrl+s: save   esc/ctrl+g: cancel"))

	return renderModalBox(width, f.title(), b.String())
}
