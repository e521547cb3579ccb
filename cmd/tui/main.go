package main

import (
	"fmt"
	"os"

	"codeberg.org/printableperks/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	app := tui.NewApp()
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
