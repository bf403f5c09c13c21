package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := newClient().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list failed: %w", err)
		}
		printListing(names)
		return nil
	},
}

var listingBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1).
	BorderForeground(lipgloss.Color("63"))

// printListing shows names in the order the gateway returned them.
func printListing(names []string) {
	if len(names) == 0 {
		color.Yellow("No files stored.")
		return
	}
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Files (%d)", len(names)))
	fmt.Println(listingBox.Render(title + "\n" + strings.Join(names, "\n")))
}
