package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// State is where one file of a batch is in its upload.
type State int

const (
	StatePending State = iota
	StateInProgress
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInProgress:
		return "in-progress"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FileStatus is a snapshot of one batch member. Index is its position in the
// selection and is the only identity the coordinator relies on: two files
// with the same base name are tracked separately.
type FileStatus struct {
	Index   int
	Path    string
	Name    string
	Size    int64
	Sent    int64
	Percent int
	State   State
	Err     error
}

// Reporter receives every state change and every whole-percent step.
// With Parallel > 1 it is called from several goroutines at once.
type Reporter interface {
	Report(FileStatus)
}

type nopReporter struct{}

func (nopReporter) Report(FileStatus) {}

// BatchResult is the settled state of a batch plus the listing fetched after it.
type BatchResult struct {
	Files   []FileStatus
	Listing []string
	ListErr error
}

// Failed returns how many files did not complete.
func (b *BatchResult) Failed() int {
	n := 0
	for _, f := range b.Files {
		if f.State == StateFailed {
			n++
		}
	}
	return n
}

// Coordinator uploads batches of local files and keeps the remote listing fresh.
type Coordinator struct {
	client   *Client
	parallel int
	reporter Reporter
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithParallel allows up to n uploads in flight. n <= 1 keeps uploads
// sequential, so files complete in selection order.
func WithParallel(n int) Option {
	return func(c *Coordinator) { c.parallel = n }
}

// WithReporter sets where progress goes.
func WithReporter(r Reporter) Option {
	return func(c *Coordinator) { c.reporter = r }
}

// NewCoordinator returns a sequential Coordinator with no reporter unless
// options say otherwise.
func NewCoordinator(c *Client, opts ...Option) *Coordinator {
	co := &Coordinator{client: c, parallel: 1, reporter: nopReporter{}}
	for _, opt := range opts {
		opt(co)
	}
	if co.reporter == nil {
		co.reporter = nopReporter{}
	}
	return co
}

// Upload sends every path as its own request. The selection is copied before
// anything starts, a failed file never stops the others, and the listing is
// refreshed once every file has settled.
func (co *Coordinator) Upload(ctx context.Context, paths []string) *BatchResult {
	files := make([]FileStatus, len(paths))
	for i, p := range paths {
		files[i] = FileStatus{Index: i, Path: p, Name: filepath.Base(p), Size: -1, State: StatePending}
		co.reporter.Report(files[i])
	}

	if co.parallel <= 1 {
		for i := range files {
			co.uploadOne(ctx, &files[i])
		}
	} else {
		sem := make(chan struct{}, co.parallel)
		var wg sync.WaitGroup
		for i := range files {
			wg.Add(1)
			sem <- struct{}{}
			go func(f *FileStatus) {
				defer wg.Done()
				defer func() { <-sem }()
				co.uploadOne(ctx, f)
			}(&files[i])
		}
		wg.Wait()
	}

	res := &BatchResult{Files: files}
	res.Listing, res.ListErr = co.client.List(ctx)
	return res
}

// uploadOne owns f for the duration of the call; no other goroutine touches it.
func (co *Coordinator) uploadOne(ctx context.Context, f *FileStatus) {
	fail := func(err error) {
		f.State = StateFailed
		f.Err = err
		co.reporter.Report(*f)
	}

	file, err := os.Open(f.Path)
	if err != nil {
		fail(err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		fail(err)
		return
	}
	if info.IsDir() {
		fail(fmt.Errorf("%s is a directory", f.Path))
		return
	}
	f.Size = info.Size()

	f.State = StateInProgress
	co.reporter.Report(*f)

	res, err := co.client.Upload(ctx, f.Name, file, func(sent int64) {
		f.Sent = sent
		if p := percent(sent, f.Size); p != f.Percent {
			f.Percent = p
			co.reporter.Report(*f)
		}
	})
	if err != nil {
		if res != nil && len(res.Files) == 1 && res.Files[0].Error != "" {
			err = fmt.Errorf("%w (%s)", err, res.Files[0].Error)
		}
		fail(err)
		return
	}

	f.State = StateComplete
	f.Percent = 100
	co.reporter.Report(*f)
}

// Delete removes name and returns the refreshed listing. The listing is only
// fetched after the gateway confirmed the delete.
func (co *Coordinator) Delete(ctx context.Context, name string) ([]string, error) {
	if err := co.client.Delete(ctx, name); err != nil {
		return nil, err
	}
	names, err := co.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh after delete: %w", err)
	}
	return names, nil
}

func percent(sent, size int64) int {
	if size <= 0 {
		return 0
	}
	p := int(sent * 100 / size)
	if p > 100 {
		p = 100
	}
	return p
}
