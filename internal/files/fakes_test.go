package files

import (
	"context"
	"crypto/sha256"
	"errors"
	"hash"
	"io"
	"sync"
	"sync/atomic"

	"github.com/radif/filegate/internal/journal"
	"github.com/radif/filegate/internal/storage"
)

type recordingJournal struct {
	mu     sync.Mutex
	events []journal.Event
	err    error
}

func (j *recordingJournal) Record(_ context.Context, e journal.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
	return j.err
}

func (j *recordingJournal) all() []journal.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.Event(nil), j.events...)
}

var errProvider = errors.New("provider unavailable: dial tcp 10.0.0.7:9000: connection refused")

// spyStore counts every provider call and can fail selected operations.
type spyStore struct {
	*storage.MemoryStorage
	calls     atomic.Int32
	putErr    map[string]error
	ensureErr error
	getErr    error
	deleteErr error
	listErr   error
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStorage: storage.NewMemoryStorage(), putErr: map[string]error{}}
}

func (s *spyStore) EnsureNamespace(ctx context.Context) error {
	s.calls.Add(1)
	if s.ensureErr != nil {
		return s.ensureErr
	}
	return s.MemoryStorage.EnsureNamespace(ctx)
}

func (s *spyStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	s.calls.Add(1)
	if err, ok := s.putErr[key]; ok {
		return err
	}
	return s.MemoryStorage.Put(ctx, key, content, size, contentType)
}

func (s *spyStore) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.calls.Add(1)
	if s.getErr != nil {
		return nil, storage.ObjectInfo{}, s.getErr
	}
	return s.MemoryStorage.Get(ctx, key)
}

func (s *spyStore) Delete(ctx context.Context, key string) error {
	s.calls.Add(1)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryStorage.Delete(ctx, key)
}

func (s *spyStore) List(ctx context.Context) ([]string, error) {
	s.calls.Add(1)
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.MemoryStorage.List(ctx)
}

// digestStore keeps only a hash and length of each object, so large transfers
// can be checked without holding them in memory. Get serves generated content.
type digestStore struct {
	mu      sync.Mutex
	sizes   map[string]int64
	digests map[string][]byte
	putSize int64
}

func newDigestStore() *digestStore {
	return &digestStore{sizes: map[string]int64{}, digests: map[string][]byte{}}
}

func (d *digestStore) object(key string) ([]byte, int64, int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.digests[key], d.sizes[key], d.putSize
}

func (d *digestStore) EnsureNamespace(context.Context) error { return nil }

func (d *digestStore) Put(_ context.Context, key string, content io.Reader, size int64, _ string) error {
	h := sha256.New()
	n, err := io.Copy(h, content)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.sizes[key] = n
	d.digests[key] = h.Sum(nil)
	d.putSize = size
	d.mu.Unlock()
	return nil
}

func (d *digestStore) Get(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	d.mu.Lock()
	n, ok := d.sizes[key]
	d.mu.Unlock()
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrNotFound
	}
	return io.NopCloser(io.LimitReader(&patternReader{}, n)), storage.ObjectInfo{Key: key, Size: n, ContentType: "application/octet-stream"}, nil
}

func (d *digestStore) Delete(context.Context, string) error { return nil }

func (d *digestStore) List(context.Context) ([]string, error) { return nil, nil }

// patternReader yields an endless deterministic byte sequence.
type patternReader struct {
	off int64
}

func (p *patternReader) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = byte((p.off * 31) % 251)
		p.off++
	}
	return len(b), nil
}

func patternDigest(n int64) []byte {
	h := sha256.New()
	_, _ = io.Copy(h, io.LimitReader(&patternReader{}, n))
	return h.Sum(nil)
}

func digestOf(h hash.Hash, r io.Reader) ([]byte, int64, error) {
	n, err := io.Copy(h, r)
	return h.Sum(nil), n, err
}
