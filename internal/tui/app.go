package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stacks-cli/internal/catalog"
	"stacks-cli/internal/model"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalItemForm
	modalConfirmDelete
)

// searchResultMsg replaces the result set. seq fences stale responses: a
// result is applied only when its seq is still the latest issued search.
type searchResultMsg struct {
	seq   int
	items []model.Item
	err   error
}

// mutationDoneMsg reports a completed add/modify/delete call. formSeq ties
// add/modify completions back to the form session that issued them.
type mutationDoneMsg struct {
	op      string
	formSeq int
	err     error
}

const remoteCallTimeout = 10 * time.Second

type appModel struct {
	client *catalog.Client

	width  int
	height int

	queryInput  textinput.Model
	fieldIdx    int
	searchFocus bool

	table table.Model
	items []model.Item

	modal       modalKind
	form        *itemForm
	formSeq     int
	deleteID    int64
	deleteTitle string
	deleteFocus confirmModalFocus

	// Last issued search; mutations re-run it to keep the table consistent.
	searchSeq int
	lastField catalog.QueryField
	lastText  string

	status string
}

var resultColumns = []table.Column{
	{Title: "id", Width: 5},
	{Title: "title", Width: 22},
	{Title: "isbn", Width: 14},
	{Title: "author", Width: 13},
	{Title: "publisher", Width: 13},
	{Title: "desc", Width: 18},
	{Title: "cover", Width: 14},
	{Title: "price", Width: 8},
	{Title: "extra", Width: 10},
}

func newAppModel(client *catalog.Client) appModel {
	m := appModel{
		client:    client,
		lastField: catalog.QueryTitle,
	}
	for i, f := range catalog.QueryFields {
		if f == m.lastField {
			m.fieldIdx = i
		}
	}

	m.queryInput = textinput.New()
	m.queryInput.Placeholder = "Search"
	m.queryInput.CharLimit = 200
	m.queryInput.Width = 40

	t := table.New(
		table.WithColumns(resultColumns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(colorMuted)
	st.Selected = st.Selected.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)
	t.SetStyles(st)
	m.table = t

	// The first search (unfiltered full catalog) is issued from Init.
	m.searchSeq = 1
	m.lastText = ""
	return m
}

func (m appModel) Init() tea.Cmd {
	return doSearch(m.client, m.lastField, m.lastText, m.searchSeq)
}

// buildRows converts a result set into table rows, one per item, in order.
// It is a pure function of its input, so re-rendering the same result set
// yields the same table.
func buildRows(items []model.Item) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, table.Row{
			strconv.FormatInt(it.ID, 10),
			it.Title,
			it.ISBN,
			it.Author,
			it.Publisher,
			it.Desc,
			it.Cover,
			model.FormatPrice(it.Price),
			it.Extra,
		})
	}
	return rows
}

func doSearch(c *catalog.Client, field catalog.QueryField, text string, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()
		items, err := c.Search(ctx, field, text)
		return searchResultMsg{seq: seq, items: items, err: err}
	}
}

func doAdd(c *catalog.Client, it model.Item, formSeq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()
		_, err := c.Add(ctx, it)
		return mutationDoneMsg{op: "add", formSeq: formSeq, err: err}
	}
}

func doModify(c *catalog.Client, it model.Item, formSeq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()
		err := c.Modify(ctx, it)
		return mutationDoneMsg{op: "modify", formSeq: formSeq, err: err}
	}
}

func doDelete(c *catalog.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		defer cancel()
		err := c.Delete(ctx, id)
		return mutationDoneMsg{op: "delete", err: err}
	}
}

// refresh re-issues the last visible search. This is the documented refresh
// policy: after every successful mutation the table shows the same query the
// user last ran, not a reset view.
func (m *appModel) refresh() tea.Cmd {
	m.searchSeq++
	return doSearch(m.client, m.lastField, m.lastText, m.searchSeq)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case searchResultMsg:
		if msg.seq != m.searchSeq {
			// A newer search superseded this one; discard the stale result.
			return m, nil
		}
		if msg.err != nil {
			// Result set stays untouched so the user keeps what they had.
			m.status = "search failed: " + msg.err.Error()
			return m, nil
		}
		m.items = msg.items
		m.table.SetRows(buildRows(msg.items))
		if m.table.Cursor() >= len(msg.items) && len(msg.items) > 0 {
			m.table.SetCursor(len(msg.items) - 1)
		}
		m.status = fmt.Sprintf("%d item(s)", len(msg.items))
		return m, nil

	case mutationDoneMsg:
		return m.handleMutationDone(msg)

	case tea.KeyMsg:
		switch m.modal {
		case modalItemForm:
			return m.updateItemForm(msg)
		case modalConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m appModel) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	// Ties a form completion to the session that issued it; a completion for
	// an already-dismissed session must not close (or error) a newer one.
	sameSession := m.modal == modalItemForm && m.form != nil && m.form.seq == msg.formSeq

	if msg.err != nil {
		if sameSession {
			// Keep the dialog open with the drafted values so the user can
			// fix and retry.
			m.form.err = msg.op + " failed: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.op + " failed: " + msg.err.Error()
		return m, nil
	}

	switch msg.op {
	case "add":
		if sameSession {
			m.modal = modalNone
			m.form = nil
		}
		m.status = "item added"
	case "modify":
		if sameSession {
			m.modal = modalNone
			m.form = nil
		}
		m.status = "item updated"
	case "delete":
		m.status = "item deleted"
	}
	return m, m.refresh()
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchFocus {
		switch msg.String() {
		case "enter":
			m.queryInput.Blur()
			m.searchFocus = false
			m.lastField = catalog.QueryFields[m.fieldIdx]
			m.lastText = strings.TrimSpace(m.queryInput.Value())
			return m, m.refresh()
		case "esc", "ctrl+g":
			m.queryInput.Blur()
			m.searchFocus = false
			return m, nil
		case "tab":
			m.fieldIdx = (m.fieldIdx + 1) % len(catalog.QueryFields)
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.queryInput, cmd = m.queryInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "/":
		m.searchFocus = true
		m.queryInput.Focus()
		return m, nil
	case "f", "tab":
		m.fieldIdx = (m.fieldIdx + 1) % len(catalog.QueryFields)
		return m, nil
	case "r":
		return m, m.refresh()
	case "a":
		return m.openCreate()
	case "e", "enter":
		return m.openEditSelected()
	case "d":
		return m.openDeleteSelected()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// openCreate starts a Create session: all fields blank, dialog titled for
// adding. Any previous session state was already cleared when it closed.
func (m appModel) openCreate() (tea.Model, tea.Cmd) {
	m.formSeq++
	m.form = newItemForm(m.formSeq, nil)
	m.modal = modalItemForm
	return m, nil
}

// openEditSelected starts an Edit session for the selected row, pre-filled
// with its current field values.
func (m appModel) openEditSelected() (tea.Model, tea.Cmd) {
	it, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	m.formSeq++
	m.form = newItemForm(m.formSeq, &it)
	m.modal = modalItemForm
	return m, nil
}

func (m appModel) openDeleteSelected() (tea.Model, tea.Cmd) {
	it, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	m.deleteID = it.ID
	m.deleteTitle = it.Title
	m.deleteFocus = confirmFocusCancel
	m.modal = modalConfirmDelete
	return m, nil
}

func (m appModel) selectedItem() (model.Item, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return model.Item{}, false
	}
	return m.items[i], true
}

func (m appModel) updateItemForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		// Cancel: discard drafts, no remote call. Dropping the session also
		// drops its confirm dispatch, so nothing stale can fire later.
		m.modal = modalNone
		m.form = nil
		return m, nil
	case "ctrl+s":
		it, err := m.form.readItem()
		if err != nil {
			// Invalid local input is caught before dispatch.
			m.form.err = err.Error()
			return m, nil
		}
		m.form.err = ""
		if m.form.isCreate() {
			return m, doAdd(m.client, it, m.form.seq)
		}
		return m, doModify(m.client, it, m.form.seq)
	case "ctrl+c":
		return m, tea.Quit
	}

	cmd := m.form.update(msg)
	return m, cmd
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	closeModal := func() {
		m.modal = modalNone
		m.deleteID = 0
		m.deleteTitle = ""
	}

	switch msg.String() {
	case "esc", "ctrl+g", "n":
		closeModal()
		return m, nil
	case "tab", "left", "right":
		if m.deleteFocus == confirmFocusConfirm {
			m.deleteFocus = confirmFocusCancel
		} else {
			m.deleteFocus = confirmFocusConfirm
		}
		return m, nil
	case "enter":
		if m.deleteFocus != confirmFocusConfirm {
			closeModal()
			return m, nil
		}
		id := m.deleteID
		closeModal()
		return m, doDelete(m.client, id)
	case "y":
		id := m.deleteID
		closeModal()
		return m, doDelete(m.client, id)
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

const (
	minSplitDetailW = 100
	chromeLines     = 7 // header, search bar, gaps, status, footer
)

func (m *appModel) resize() {
	h := m.height - chromeLines
	if h < 5 {
		h = 5
	}
	w := m.width
	if w < 60 {
		w = 60
	}
	if w >= minSplitDetailW {
		w = w * 2 / 3
	}
	m.table.SetHeight(h)
	m.table.SetWidth(w)
	m.queryInput.Width = w - 24
}

func (m appModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Stacks catalog")

	fieldLabel := "[" + string(catalog.QueryFields[m.fieldIdx]) + "]"
	fieldSt := styleMuted()
	if m.searchFocus {
		fieldSt = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	}
	searchBar := fieldSt.Render(fieldLabel) + " " + m.queryInput.View()

	body := m.viewResults()

	status := styleMuted().Render(m.status)
	footer := styleMuted().Render("/: search  tab: field  a: add  e: edit  d: delete  r: reload  q: quit")

	screen := strings.Join([]string{header, searchBar, "", body, status, footer}, "\n")

	switch m.modal {
	case modalItemForm:
		return m.placeCentered(m.form.view(m.width))
	case modalConfirmDelete:
		body := fmt.Sprintf("Delete item %d (%s)? This cannot be undone.", m.deleteID, m.deleteTitle)
		return m.placeCentered(renderConfirmModal(m.width, "Delete item", body, "Delete", "Cancel", m.deleteFocus))
	}
	return screen
}

func (m appModel) viewResults() string {
	bodyH := m.height - chromeLines
	if bodyH < 5 {
		bodyH = 5
	}

	if m.width < minSplitDetailW {
		return m.table.View()
	}

	leftW := m.width * 2 / 3
	rightW := m.width - leftW - 2

	left := normalizePane(m.table.View(), leftW, bodyH)
	var right string
	if it, ok := m.selectedItem(); ok {
		right = renderItemDetail(it, rightW, bodyH)
	} else {
		right = normalizePane(styleMuted().Render("No item selected."), rightW, bodyH)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m appModel) placeCentered(s string) string {
	if m.width <= 0 || m.height <= 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}
