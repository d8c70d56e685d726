package tui

import (
	"stacks-cli/internal/catalog"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive catalog browser against the given client and
// blocks until the user quits.
func Run(client *catalog.Client) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(client)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
