package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/0x6d61/futu-mcp/internal/tui"
)

func newConsoleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "console",
		Short:       "Interactive console: pick a tool, type JSON arguments, inspect results",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{quietAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := tui.New(cmd.Context(), a.registry.List(), a.dispatcher)
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
