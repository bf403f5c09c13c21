package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/filegate/internal/files"
	"github.com/radif/filegate/internal/logging"
	"github.com/radif/filegate/internal/storage"
)

// failingStore fails every put for one key.
type failingStore struct {
	storage.Storage
	key string
}

func (s failingStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	if key == s.key {
		return storage.ErrTransport
	}
	return s.Storage.Put(ctx, key, content, size, contentType)
}

func newGateway(t *testing.T, store storage.Storage, wrap func(http.Handler) http.Handler) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	if wrap != nil {
		r.Use(wrap)
	}
	svc := files.NewService(store, nil, logging.Discard())
	files.NewHandler(svc, logging.Discard(), 0).Mount(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []FileStatus
}

func (r *recordingReporter) Report(f FileStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, f)
}

func (r *recordingReporter) settledOrder() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var order []int
	for _, f := range r.reports {
		if f.State == StateComplete || f.State == StateFailed {
			order = append(order, f.Index)
		}
	}
	return order
}

func (r *recordingReporter) statesFor(index int) []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []State
	for _, f := range r.reports {
		if f.Index == index && (len(states) == 0 || states[len(states)-1] != f.State) {
			states = append(states, f.State)
		}
	}
	return states
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newGateway(t, storage.NewMemoryStorage(), nil)
	c := New(srv.URL+"/", nil)

	var sent int64
	res, err := c.Upload(ctx, "report.pdf", strings.NewReader("%PDF-1.7"), func(n int64) { sent = n })
	require.NoError(t, err)
	assert.Equal(t, int64(8), sent)
	assert.NotEmpty(t, res.BatchID)
	require.Len(t, res.Files, 1)
	assert.Equal(t, Outcome{File: "report.pdf", Bytes: 8, Status: "uploaded"}, res.Files[0])

	names, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.pdf"}, names)

	var buf bytes.Buffer
	n, err := c.Download(ctx, "report.pdf", &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "%PDF-1.7", buf.String())

	require.NoError(t, c.Delete(ctx, "report.pdf"))
	err = c.Delete(ctx, "report.pdf")
	assert.True(t, IsNotFound(err))

	_, err = c.Download(ctx, "report.pdf", io.Discard, nil)
	assert.True(t, IsNotFound(err))
	assert.EqualError(t, err, "gateway returned 404: File not found.")
}

func TestClient_NamesNeedingEscapes(t *testing.T) {
	ctx := context.Background()
	srv := newGateway(t, storage.NewMemoryStorage(), nil)
	c := New(srv.URL, nil)

	for _, name := range []string{"my report.pdf", "100%.txt", "a#b?.txt", "отчёт.pdf"} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Upload(ctx, name, strings.NewReader(name), nil)
			require.NoError(t, err)

			var buf bytes.Buffer
			_, err = c.Download(ctx, name, &buf, nil)
			require.NoError(t, err)
			assert.Equal(t, name, buf.String())
			require.NoError(t, c.Delete(ctx, name))
		})
	}
}

func TestClient_UploadFailure(t *testing.T) {
	srv := newGateway(t, failingStore{Storage: storage.NewMemoryStorage(), key: "bad.txt"}, nil)
	c := New(srv.URL, nil)

	res, err := c.Upload(context.Background(), "bad.txt", strings.NewReader("x"), nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	require.NotNil(t, res)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "failed", res.Files[0].Status)
}

func TestCoordinator_SequentialBatch(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.txt", strings.Repeat("a", 1000)),
		writeFile(t, dir, "b.txt", "b"),
		filepath.Join(dir, "missing.txt"),
		writeFile(t, dir, "d.txt", ""),
	}

	srv := newGateway(t, storage.NewMemoryStorage(), nil)
	rep := &recordingReporter{}
	co := NewCoordinator(New(srv.URL, nil), WithReporter(rep))

	res := co.Upload(context.Background(), paths)

	require.Len(t, res.Files, 4)
	assert.Equal(t, 1, res.Failed())
	assert.Equal(t, StateComplete, res.Files[0].State)
	assert.Equal(t, 100, res.Files[0].Percent)
	assert.Equal(t, StateComplete, res.Files[1].State)
	assert.Equal(t, StateFailed, res.Files[2].State)
	assert.ErrorIs(t, res.Files[2].Err, os.ErrNotExist)
	assert.Equal(t, StateComplete, res.Files[3].State)

	assert.Equal(t, []int{0, 1, 2, 3}, rep.settledOrder())
	assert.Equal(t, []State{StatePending, StateInProgress, StateComplete}, rep.statesFor(0))
	assert.Equal(t, []State{StatePending, StateFailed}, rep.statesFor(2))

	require.NoError(t, res.ListErr)
	sort.Strings(res.Listing)
	assert.Equal(t, []string{"a.txt", "b.txt", "d.txt"}, res.Listing)
}

func TestCoordinator_ServerFailureIsolated(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "ok.txt", "ok"),
		writeFile(t, dir, "bad.txt", "bad"),
		writeFile(t, dir, "also-ok.txt", "also"),
	}

	srv := newGateway(t, failingStore{Storage: storage.NewMemoryStorage(), key: "bad.txt"}, nil)
	res := NewCoordinator(New(srv.URL, nil)).Upload(context.Background(), paths)

	assert.Equal(t, 1, res.Failed())
	assert.Equal(t, StateFailed, res.Files[1].State)
	assert.ErrorContains(t, res.Files[1].Err, "upload failed")

	sort.Strings(res.Listing)
	assert.Equal(t, []string{"also-ok.txt", "ok.txt"}, res.Listing)
}

func TestCoordinator_SameNameTrackedByPosition(t *testing.T) {
	first := writeFile(t, t.TempDir(), "a.txt", "first")
	second := writeFile(t, t.TempDir(), "a.txt", "second!")

	store := storage.NewMemoryStorage()
	srv := newGateway(t, store, nil)
	rep := &recordingReporter{}
	res := NewCoordinator(New(srv.URL, nil), WithReporter(rep)).Upload(context.Background(), []string{first, second})

	assert.Zero(t, res.Failed())
	assert.Equal(t, int64(5), res.Files[0].Size)
	assert.Equal(t, int64(7), res.Files[1].Size)
	assert.Equal(t, []int{0, 1}, rep.settledOrder())

	// Sequential uploads make the last selected file win.
	body, _, err := store.Get(context.Background(), "a.txt")
	require.NoError(t, err)
	defer body.Close()
	data, _ := io.ReadAll(body)
	assert.Equal(t, "second!", string(data))
	assert.Equal(t, []string{"a.txt"}, res.Listing)
}

func TestCoordinator_ParallelIsBounded(t *testing.T) {
	var inFlight, peak atomic.Int32
	track := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				n := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
			}
			next.ServeHTTP(w, r)
		})
	}

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"1.txt", "2.txt", "3.txt", "4.txt", "5.txt", "6.txt"} {
		paths = append(paths, writeFile(t, dir, name, name))
	}

	srv := newGateway(t, storage.NewMemoryStorage(), track)
	res := NewCoordinator(New(srv.URL, nil), WithParallel(2)).Upload(context.Background(), paths)

	assert.Zero(t, res.Failed())
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Len(t, res.Listing, 6)
}

func TestCoordinator_Delete(t *testing.T) {
	ctx := context.Background()
	srv := newGateway(t, storage.NewMemoryStorage(), nil)
	c := New(srv.URL, nil)
	co := NewCoordinator(c)

	for _, name := range []string{"keep.txt", "drop.txt"} {
		_, err := c.Upload(ctx, name, strings.NewReader(name), nil)
		require.NoError(t, err)
	}

	names, err := co.Delete(ctx, "drop.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, names)

	_, err = co.Delete(ctx, "drop.txt")
	assert.True(t, IsNotFound(err))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, percent(10, 0))
	assert.Equal(t, 50, percent(5, 10))
	assert.Equal(t, 100, percent(10, 10))
	assert.Equal(t, 100, percent(11, 10))
}
