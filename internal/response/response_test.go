package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		body   string
	}{
		{"ok", func(w http.ResponseWriter) { OK(w, "done") }, http.StatusOK, "done"},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "No file uploaded.") }, http.StatusBadRequest, "No file uploaded."},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "File not found.") }, http.StatusNotFound, "File not found."},
		{"too large", func(w http.ResponseWriter) { TooLarge(w, "big") }, http.StatusRequestEntityTooLarge, "big"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "Delete failed.") }, http.StatusInternalServerError, "Delete failed."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.body, rec.Body.String())
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, []string{"report.pdf"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `["report.pdf"]`, rec.Body.String())
}
