package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/radif/filegate/internal/client"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	if !deleteYes {
		confirmed := false
		prompt := &survey.Confirm{Message: fmt.Sprintf("Delete %s?", name)}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			color.Yellow("Aborted.")
			return nil
		}
	}

	names, err := client.NewCoordinator(newClient()).Delete(cmd.Context(), name)
	if err != nil {
		if client.IsNotFound(err) {
			color.Red("✗ %s does not exist", name)
		}
		return err
	}

	color.Green("✓ Deleted %s", name)
	printListing(names)
	return nil
}
