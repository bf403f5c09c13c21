package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <name> [destination]",
	Short: "Download a stored file",
	Long: `Downloads the named file. The destination defaults to the file name in the current
directory; when it is an existing directory the file is written inside it.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	name := args[0]
	dest := filepath.Base(name)
	if len(args) == 2 {
		dest = args[1]
		if info, err := os.Stat(dest); err == nil && info.IsDir() {
			dest = filepath.Join(dest, filepath.Base(name))
		}
	}

	// Write next to the destination and rename, so a failed download never
	// leaves a truncated file under the final name.
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bar := createProgressBar(name, -1)
	n, err := newClient().Download(cmd.Context(), name, tmp, func(received int64) {
		_ = bar.Set64(received)
	})
	_ = bar.Finish()
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("download failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}

	color.Green("✓ Downloaded %s (%d bytes) to %s", name, n, dest)
	return nil
}
