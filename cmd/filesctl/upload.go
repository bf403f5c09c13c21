package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/radif/filegate/internal/client"
)

var uploadParallel int

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload one or more files",
	Long: `Uploads each file in its own request, one after another, showing progress per file.
A file that fails does not stop the rest. The remote listing is printed once every file has settled.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().IntVarP(&uploadParallel, "parallel", "p", 1, "number of uploads in flight; above 1, completion order is not preserved")
}

// runUpload is the main entry point for the upload command
func runUpload(cmd *cobra.Command, args []string) error {
	var reporter client.Reporter = newBarReporter()
	if uploadParallel > 1 {
		reporter = &lineReporter{}
	}

	co := client.NewCoordinator(newClient(),
		client.WithParallel(uploadParallel),
		client.WithReporter(reporter),
	)
	res := co.Upload(cmd.Context(), args)

	fmt.Println()
	if res.ListErr != nil {
		color.Yellow("⚠ could not refresh the file list: %v", res.ListErr)
	} else {
		printListing(res.Listing)
	}

	if n := res.Failed(); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(res.Files))
	}
	return nil
}
