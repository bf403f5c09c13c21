package middleware

import (
	"io"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzip"
)

// Compress gzips JSON responses using klauspost's gzip implementation in place
// of compress/gzip.
func Compress(level int) func(http.Handler) http.Handler {
	c := chiMiddleware.NewCompressor(level, "application/json")
	c.SetEncoder("gzip", func(w io.Writer, level int) io.Writer {
		gw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil
		}
		return gw
	})
	return c.Handler
}
