package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mahora/task-tracker/internal/client"
	"github.com/mahora/task-tracker/internal/config"
	"github.com/mahora/task-tracker/internal/tui"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	api := client.New(cfg.APIURL, cfg.Timeout)

	p := tea.NewProgram(tui.NewApp(api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
