package files

import (
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxNameBytes matches the common filesystem limit for a single path element.
const maxNameBytes = 255

// ErrInvalidName is returned when a file name cannot be used as a storage key.
var ErrInvalidName = errors.New("invalid file name")

// ValidateName checks that name is safe both as a flat storage key and inside
// a Content-Disposition header.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidName)
	case len(name) > maxNameBytes:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, maxNameBytes)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: contains a path separator", ErrInvalidName)
	case strings.ContainsRune(name, '"'):
		return fmt.Errorf("%w: contains a double quote", ErrInvalidName)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: contains a control character", ErrInvalidName)
		}
	}
	return nil
}

// ContentDisposition builds an attachment header for name. Plain names come out
// verbatim (attachment; filename=report.pdf); names needing quoting or non-ASCII
// encoding are escaped by mime.FormatMediaType.
func ContentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
