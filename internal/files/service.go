// Package files is the HTTP-facing transfer gateway: it turns multipart uploads,
// downloads, listings and deletes into Storage calls and maps storage failures
// onto client-facing status codes.
package files

import (
	"context"
	"errors"
	"io"

	"github.com/radif/filegate/internal/journal"
	"github.com/radif/filegate/internal/logging"
	"github.com/radif/filegate/internal/storage"
)

// Part statuses reported back to the uploader.
const (
	StatusUploaded = "uploaded"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// PartOutcome is the result of storing one multipart file part.
type PartOutcome struct {
	File   string `json:"file"`
	Bytes  int64  `json:"bytes"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Service contains the transfer logic shared by the HTTP handlers.
type Service struct {
	store   storage.Storage
	journal journal.Journal
	log     logging.Logger
}

// NewService creates a Service. A nil journal disables event recording.
func NewService(store storage.Storage, j journal.Journal, log logging.Logger) *Service {
	if j == nil {
		j = journal.Nop{}
	}
	return &Service{store: store, journal: j, log: log}
}

// UploadPart validates name and streams content to storage. Every failure is
// captured in the returned outcome; it never panics or returns an error, so one
// bad part cannot affect its siblings.
func (s *Service) UploadPart(ctx context.Context, batchID, name string, content io.Reader, contentType string) PartOutcome {
	out := PartOutcome{File: name}

	if err := ValidateName(name); err != nil {
		out.Status = StatusRejected
		out.Error = err.Error()
		s.record(ctx, journal.Event{BatchID: batchID, Operation: journal.OpUpload, Key: name, Outcome: journal.OutcomeRejected, Error: err.Error()})
		return out
	}

	cr := &countingReader{r: content}
	err := s.store.EnsureNamespace(ctx)
	if err == nil {
		err = s.store.Put(ctx, name, cr, storage.SizeUnknown, contentType)
	}
	out.Bytes = cr.n

	if err != nil {
		s.log.Error(ctx, "upload part failed", "key", name, "batch_id", batchID, "bytes", cr.n, "error", err)
		out.Status = StatusFailed
		out.Error = "upload failed"
		s.record(ctx, journal.Event{BatchID: batchID, Operation: journal.OpUpload, Key: name, Bytes: cr.n, Outcome: journal.OutcomeFailed, Error: err.Error()})
		return out
	}

	s.log.Info(ctx, "object stored", "key", name, "batch_id", batchID, "bytes", cr.n)
	out.Status = StatusUploaded
	s.record(ctx, journal.Event{BatchID: batchID, Operation: journal.OpUpload, Key: name, Bytes: cr.n, Outcome: journal.OutcomeOK})
	return out
}

// List returns the current key snapshot in provider order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Open returns a stream for name. The caller must close it.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	return s.store.Get(ctx, name)
}

// Delete removes name. An absent object yields storage.ErrNotFound.
func (s *Service) Delete(ctx context.Context, batchID, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	err := s.store.Delete(ctx, name)
	e := journal.Event{BatchID: batchID, Operation: journal.OpDelete, Key: name, Outcome: journal.OutcomeOK}
	switch {
	case err == nil:
	case s.IsNotFound(err):
		e.Outcome = journal.OutcomeNotFound
	default:
		e.Outcome = journal.OutcomeFailed
		e.Error = err.Error()
	}
	s.record(ctx, e)
	return err
}

// IsNotFound returns true when the error indicates the object does not exist.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// record writes to the journal without letting a journal failure escape.
func (s *Service) record(ctx context.Context, e journal.Event) {
	if err := s.journal.Record(context.WithoutCancel(ctx), e); err != nil {
		s.log.Warn(ctx, "journal record failed", "key", e.Key, "operation", e.Operation, "error", err)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
