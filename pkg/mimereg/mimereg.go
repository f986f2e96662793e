// Package mimereg maps MIME types to file extensions for desktop-entry
// imports. The registry is read-only; imports consult it once per MIME type.
package mimereg

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Registry answers "which file extensions belong to this MIME type".
// Extensions are returned without a leading dot; unknown types yield nil.
type Registry interface {
	Extensions(mimeType string) []string
}

// Default is the registry backed by the platform MIME database with the
// embedded mimetype table as fallback.
type Default struct{}

// New returns the default registry
func New() Registry {
	return Default{}
}

// Extensions returns every extension registered for mimeType. The platform
// database (stdlib mime) is consulted first; when it knows nothing, the
// canonical extension from the embedded mimetype table is used instead.
func (Default) Extensions(mimeType string) []string {
	var exts []string
	seen := make(map[string]bool)

	if platform, err := mime.ExtensionsByType(mimeType); err == nil {
		for _, ext := range platform {
			ext = strings.TrimPrefix(ext, ".")
			if ext != "" && !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}

	if len(exts) == 0 {
		if mt := mimetype.Lookup(mimeType); mt != nil {
			if ext := strings.TrimPrefix(mt.Extension(), "."); ext != "" {
				exts = append(exts, ext)
			}
		}
	}

	return exts
}
