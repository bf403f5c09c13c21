package files

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/radif/filegate/internal/logging"
	"github.com/radif/filegate/internal/response"
)

// BatchHeader carries the id that groups every part of one upload request.
const BatchHeader = "X-Batch-ID"

// Handler holds HTTP handlers for the /files endpoints.
type Handler struct {
	svc            *Service
	log            logging.Logger
	maxUploadBytes int64
}

// NewHandler creates a new files Handler. maxUploadBytes <= 0 disables the body limit.
func NewHandler(svc *Service, log logging.Logger, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, log: log, maxUploadBytes: maxUploadBytes}
}

// Mount registers the /files routes on r. listMiddleware wraps only the list
// route, so downloads are never re-encoded.
func (h *Handler) Mount(r chi.Router, listMiddleware ...func(http.Handler) http.Handler) {
	r.Post("/files", h.Upload)
	r.With(listMiddleware...).Get("/files", h.List)
	r.Get("/files/{filename}", h.Download)
	r.Delete("/files/{filename}", h.Delete)
}

type uploadResult struct {
	BatchID string        `json:"batchId" example:"0b6f2c7e-3c55-4d0f-9d7e-6f1f3f0a9b11"`
	Message string        `json:"message" example:"Uploaded 1 of 1 files."`
	Files   []PartOutcome `json:"files"`
}

// Upload godoc
//
//	@Summary		Upload files
//	@Description	Streams every file part of a multipart/form-data body to object storage under its original file name, overwriting any object with the same name. Parts are stored one after another; each part succeeds or fails on its own and the response lists every outcome. Send Accept: application/json for a JSON body.
//	@Tags			files
//	@Accept			mpfd
//	@Produce		plain
//	@Produce		json
//	@Param			files	formData	file	true	"One or more files"
//	@Success		200		{object}	uploadResult
//	@Failure		400		{string}	string	"No file uploaded."
//	@Failure		413		{object}	uploadResult
//	@Failure		500		{object}	uploadResult
//	@Router			/files [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var limited *limitedBody
	if h.maxUploadBytes > 0 {
		limited = &limitedBody{ReadCloser: http.MaxBytesReader(w, r.Body, h.maxUploadBytes)}
		r.Body = limited
	}

	mr, err := r.MultipartReader()
	if err != nil {
		response.BadRequest(w, "Expected a multipart/form-data body.")
		return
	}

	ctx := r.Context()
	batchID := uuid.NewString()
	w.Header().Set(BatchHeader, batchID)
	log := h.log.With("batch_id", batchID)

	var (
		outcomes []PartOutcome
		bodyErr  error
	)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			bodyErr = err
			break
		}

		// Plain form fields carry no file name and are not stored.
		name := part.FileName()
		if name == "" {
			_ = part.Close()
			continue
		}

		outcomes = append(outcomes, h.svc.UploadPart(ctx, batchID, name, part, part.Header.Get("Content-Type")))
		_ = part.Close()
	}

	switch {
	case limited != nil && limited.exceeded && len(outcomes) == 0:
		log.Warn(ctx, "upload body over limit", "limit", h.maxUploadBytes)
		response.TooLarge(w, fmt.Sprintf("Upload exceeds the %d-byte limit.", h.maxUploadBytes))
		return
	case limited != nil && limited.exceeded:
		log.Warn(ctx, "upload body over limit", "limit", h.maxUploadBytes)
		h.writeUpload(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Upload exceeds the %d-byte limit.", h.maxUploadBytes), batchID, outcomes)
		return
	case bodyErr != nil && len(outcomes) == 0:
		log.Warn(ctx, "malformed multipart body", "error", bodyErr)
		response.BadRequest(w, "Malformed multipart body.")
		return
	case bodyErr != nil:
		log.Warn(ctx, "multipart body ended early", "error", bodyErr)
		h.writeUpload(w, r, http.StatusBadRequest, "Malformed multipart body.", batchID, outcomes)
		return
	case len(outcomes) == 0:
		response.BadRequest(w, "No file uploaded.")
		return
	}

	status, summary := summarize(outcomes)
	h.writeUpload(w, r, status, summary, batchID, outcomes)
}

// List godoc
//
//	@Summary		List files
//	@Description	Returns every stored file name. Order is whatever the storage provider returns and may change between calls. There is no pagination.
//	@Tags			files
//	@Produce		json
//	@Success		200	{array}		string
//	@Failure		500	{string}	string	"Failed to list files."
//	@Router			/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "list failed", "error", err)
		response.InternalError(w, "Failed to list files.")
		return
	}
	response.JSON(w, http.StatusOK, keys)
}

// Download godoc
//
//	@Summary		Download a file
//	@Description	Streams the stored bytes of the named file as an attachment.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			filename	path		string	true	"File name"
//	@Success		200			{file}		binary
//	@Failure		400			{string}	string	"Invalid file name."
//	@Failure		404			{string}	string	"File not found."
//	@Failure		500			{string}	string	"Download failed."
//	@Router			/files/{filename} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, ok := fileParam(w, r)
	if !ok {
		return
	}

	body, info, err := h.svc.Open(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidName):
			response.BadRequest(w, "Invalid file name.")
		case h.svc.IsNotFound(err):
			response.NotFound(w, "File not found.")
		default:
			h.log.Error(ctx, "download failed", "key", name, "error", err)
			response.InternalError(w, "Download failed.")
		}
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Disposition", ContentDisposition(name))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if info.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	// io.Copy blocks on a slow client, so nothing more is pulled from the provider
	// until the previous chunk has been written.
	n, err := io.Copy(w, body)
	if err != nil {
		// Headers are already sent; all that is left is to log it.
		h.log.Warn(ctx, "download interrupted", "key", name, "bytes", n, "error", err)
		return
	}
	h.log.Debug(ctx, "download complete", "key", name, "bytes", n)
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Description	Removes the named file. Deleting a file that does not exist is a 404, not a success.
//	@Tags			files
//	@Produce		plain
//	@Param			filename	path		string	true	"File name"
//	@Success		200			{string}	string	"File deleted."
//	@Failure		400			{string}	string	"Invalid file name."
//	@Failure		404			{string}	string	"File not found."
//	@Failure		500			{string}	string	"Delete failed."
//	@Router			/files/{filename} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, ok := fileParam(w, r)
	if !ok {
		return
	}

	batchID := uuid.NewString()
	w.Header().Set(BatchHeader, batchID)

	if err := h.svc.Delete(ctx, batchID, name); err != nil {
		switch {
		case errors.Is(err, ErrInvalidName):
			response.BadRequest(w, "Invalid file name.")
		case h.svc.IsNotFound(err):
			response.NotFound(w, "File not found.")
		default:
			h.log.Error(ctx, "delete failed", "key", name, "error", err)
			response.InternalError(w, "Delete failed.")
		}
		return
	}

	response.OK(w, "File deleted.")
}

// fileParam extracts the {filename} route parameter. chi matches on the escaped
// path when the request carried escapes that differ from the default encoding,
// and the parameter is still escaped in that case.
func fileParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			response.BadRequest(w, "Invalid file name.")
			return "", false
		}
		name = unescaped
	}
	return name, true
}

// limitedBody notes when http.MaxBytesReader cut the body off. The error can
// surface inside a storage provider that does not wrap it, so it is tracked at
// the source.
type limitedBody struct {
	io.ReadCloser
	exceeded bool
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	var tooLarge *http.MaxBytesError
	if err != nil && errors.As(err, &tooLarge) {
		b.exceeded = true
	}
	return n, err
}

// summarize picks the response status: any provider failure is a 500, otherwise
// any rejected name is a 400.
func summarize(outcomes []PartOutcome) (int, string) {
	var uploaded, rejected, failed int
	for _, o := range outcomes {
		switch o.Status {
		case StatusUploaded:
			uploaded++
		case StatusRejected:
			rejected++
		default:
			failed++
		}
	}

	msg := fmt.Sprintf("Uploaded %d of %d files.", uploaded, len(outcomes))
	switch {
	case failed > 0:
		return http.StatusInternalServerError, msg
	case rejected > 0:
		return http.StatusBadRequest, msg
	default:
		return http.StatusOK, msg
	}
}

func (h *Handler) writeUpload(w http.ResponseWriter, r *http.Request, status int, summary, batchID string, outcomes []PartOutcome) {
	if outcomes == nil {
		outcomes = []PartOutcome{}
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		response.JSON(w, status, uploadResult{BatchID: batchID, Message: summary, Files: outcomes})
		return
	}

	var b strings.Builder
	b.WriteString(summary)
	b.WriteByte('\n')
	for _, o := range outcomes {
		switch o.Status {
		case StatusUploaded:
			fmt.Fprintf(&b, "%s: %s (%d bytes)\n", o.File, o.Status, o.Bytes)
		default:
			fmt.Fprintf(&b, "%s: %s: %s\n", o.File, o.Status, o.Error)
		}
	}
	response.Text(w, status, b.String())
}
