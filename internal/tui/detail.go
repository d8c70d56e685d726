package tui

import (
	"strconv"
	"strings"

	"stacks-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// renderItemDetail shows the selected record in full in the right-hand pane,
// with the description rendered as markdown.
func renderItemDetail(it model.Item, width, height int) string {
	label := styleMuted()
	title := lipgloss.NewStyle().Bold(true).Render(it.Title)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")

	field := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.WriteString(label.Render(name+": ") + value + "\n")
	}
	field("id", strconv.FormatInt(it.ID, 10))
	field("isbn", it.ISBN)
	field("author", it.Author)
	field("publisher", it.Publisher)
	field("cover", it.Cover)
	field("price", model.FormatPrice(it.Price))
	field("extra", it.Extra)

	if strings.TrimSpace(it.Desc) != "" {
		b.WriteString("\n")
		b.WriteString(renderMarkdown(it.Desc, width-2))
		b.WriteString("\n")
	}

	return normalizePane(b.String(), width, height)
}
