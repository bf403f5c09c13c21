package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
)

// Compile-time check to ensure LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

var errUnsafeKey = errors.New("key is not a plain file name")

// LocalStorage implements Storage on the local filesystem. Objects live in
// <root>/<bucket>; uploads are staged in <root>/.staging and renamed into place,
// so a concurrent Get sees either the old or the new file, never a partial one.
type LocalStorage struct {
	dir     string
	staging string
}

// NewLocalStorage creates a filesystem backend rooted at root.
func NewLocalStorage(root, bucket string) *LocalStorage {
	return &LocalStorage{
		dir:     filepath.Join(root, bucket),
		staging: filepath.Join(root, ".staging"),
	}
}

// EnsureNamespace creates the bucket and staging directories.
func (l *LocalStorage) EnsureNamespace(ctx context.Context) error {
	for _, dir := range []string{l.dir, l.staging} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return localError("create directory", dir, err)
		}
	}
	return nil
}

// Put copies content into a staging file and renames it over the target.
func (l *LocalStorage) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	path, err := l.path(key)
	if err != nil {
		return classified("put object", key, ErrRejected, err)
	}

	tmp, err := os.CreateTemp(l.staging, ksuid.New().String()+"-*.part")
	if err != nil {
		return localError("put object", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := io.Copy(tmp, readerWithContext(ctx, content)); err != nil {
		_ = tmp.Close()
		return localError("put object", key, err)
	}
	if err := tmp.Close(); err != nil {
		return localError("put object", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return localError("put object", key, err)
	}
	return nil
}

// Get opens the file for key.
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	path, err := l.path(key)
	if err != nil {
		return nil, ObjectInfo{}, classified("get object", key, ErrNotFound, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ObjectInfo{}, localError("get object", key, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ObjectInfo{}, localError("get object", key, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, ObjectInfo{}, classified("get object", key, ErrNotFound, fs.ErrNotExist)
	}

	return f, ObjectInfo{Key: key, Size: st.Size(), ContentType: contentTypeFor(key, "")}, nil
}

// Delete removes the file for key.
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return classified("delete object", key, ErrNotFound, err)
	}
	st, err := os.Lstat(path)
	if err != nil {
		return localError("delete object", key, err)
	}
	if !st.Mode().IsRegular() {
		return classified("delete object", key, ErrNotFound, fs.ErrNotExist)
	}
	if err := os.Remove(path); err != nil {
		return localError("delete object", key, err)
	}
	return nil
}

// List returns the regular files in the bucket directory, in directory order.
func (l *LocalStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, localError("list objects", l.dir, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}

func (l *LocalStorage) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || filepath.Base(key) != key {
		return "", fmt.Errorf("%w: %q", errUnsafeKey, key)
	}
	return filepath.Join(l.dir, key), nil
}

func localError(op, key string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return classified(op, key, ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return classified(op, key, ErrRejected, err)
	default:
		return classified(op, key, ErrTransport, err)
	}
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
