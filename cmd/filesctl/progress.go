package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/radif/filegate/internal/client"
)

const (
	progressBarWidth       = 40
	progressBarThrottle    = 65 * 1000000
	progressBarSpinnerType = 14
)

// createProgressBar creates a standardized progress bar. A negative size
// renders a spinner with a byte counter.
func createProgressBar(description string, size int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(progressBarWidth),
		progressbar.OptionThrottle(progressBarThrottle),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(progressBarSpinnerType),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// barReporter draws one bar per file. Only used for sequential batches, where
// a single bar is live at any time.
type barReporter struct {
	bars map[int]*progressbar.ProgressBar
}

func newBarReporter() *barReporter {
	return &barReporter{bars: make(map[int]*progressbar.ProgressBar)}
}

func (r *barReporter) Report(f client.FileStatus) {
	switch f.State {
	case client.StateInProgress:
		bar, ok := r.bars[f.Index]
		if !ok {
			size := f.Size
			if size <= 0 {
				size = -1
			}
			bar = createProgressBar(f.Name, size)
			r.bars[f.Index] = bar
		}
		_ = bar.Set64(f.Sent)
	case client.StateComplete:
		if bar, ok := r.bars[f.Index]; ok {
			_ = bar.Finish()
		}
		color.Green("✓ %s uploaded", f.Name)
	case client.StateFailed:
		if bar, ok := r.bars[f.Index]; ok {
			_ = bar.Exit()
			fmt.Fprintln(os.Stderr)
		}
		color.Red("✗ %s: %v", f.Name, f.Err)
	}
}

// lineReporter prints one line per settled file. Used for parallel batches,
// where concurrent bars would overwrite each other.
type lineReporter struct {
	mu sync.Mutex
}

func (r *lineReporter) Report(f client.FileStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch f.State {
	case client.StateInProgress:
		if f.Sent == 0 {
			fmt.Fprintf(os.Stderr, "… %s\n", f.Name)
		}
	case client.StateComplete:
		color.Green("✓ %s uploaded", f.Name)
	case client.StateFailed:
		color.Red("✗ %s: %v", f.Name, f.Err)
	}
}
