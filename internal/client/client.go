// Package client talks to the file gateway over HTTP and coordinates batches of
// uploads for the filesctl command.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// formField is the multipart field the gateway reads files from. Any field
// name works server-side; this one matches the browser form.
const formField = "files"

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the gateway.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Outcome is the gateway's verdict on one uploaded file.
type Outcome struct {
	File   string `json:"file"`
	Bytes  int64  `json:"bytes"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// UploadResult is the JSON body of POST /files.
type UploadResult struct {
	BatchID string    `json:"batchId"`
	Message string    `json:"message"`
	Files   []Outcome `json:"files"`
}

// ProgressFunc receives the running total of bytes read from the upload source.
type ProgressFunc func(sent int64)

// Client is a thin HTTP client for the /files endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the gateway at baseURL. A nil httpClient uses
// http.DefaultClient, which has no overall timeout, so long transfers are
// bounded only by ctx.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) fileURL(name string) string {
	return c.baseURL + "/files/" + url.PathEscape(name)
}

// Upload streams content to the gateway as a single-file multipart request.
// The body is produced through an io.Pipe, so content is never held in memory.
// A non-nil result is returned whenever the gateway answered with JSON, even
// alongside a *StatusError.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader, progress ProgressFunc) (*UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		fw, err := mw.CreateFormFile(formField, name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := content
		if progress != nil {
			src = &progressReader{r: content, fn: progress}
		}
		if _, err := io.Copy(fw, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()
	// Closing the read side unblocks the writer if the gateway answered before
	// reading the whole body. progress is never called after Upload returns.
	defer func() {
		_ = pr.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", pr)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if resp.StatusCode == http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			return &UploadResult{BatchID: resp.Header.Get("X-Batch-ID")}, nil
		}
		return nil, statusError(resp)
	}

	var res UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &res, &StatusError{StatusCode: resp.StatusCode, Message: res.Message}
	}
	return &res, nil
}

// List returns the names currently stored, in gateway order.
func (c *Client) List(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files", nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("decode file list: %w", err)
	}
	return names, nil
}

// Download copies the named file into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, name string, w io.Writer, progress ProgressFunc) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL(name), nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, statusError(resp)
	}

	var src io.Reader = resp.Body
	if progress != nil {
		src = &progressReader{r: resp.Body, fn: progress}
	}
	n, err := io.Copy(w, src)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", name, err)
	}
	return n, nil
}

// Delete removes the named file. A missing file is reported as a 404 StatusError.
func (c *Client) Delete(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.fileURL(name), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// statusError builds a StatusError from a plain-text gateway response.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := strings.TrimSpace(string(body))
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

type progressReader struct {
	r    io.Reader
	fn   ProgressFunc
	sent int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent)
	}
	return n, err
}
