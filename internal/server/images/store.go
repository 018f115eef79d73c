// Package images stores uploaded post images and serves them back.
//
// Images are addressed by a relative path of the form "images/<name>",
// which is what the upload endpoint returns and what posts reference.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/google/uuid"
)

// Prefix starts every stored image path.
const Prefix = "images/"

// CacheControl is sent with every image served from disk. Stored names are
// unique, so a file never changes once written.
const CacheControl = "public, max-age=86400, immutable"

// Store persists image bytes under a relative path.
type Store interface {
	// Save stores body as name and returns the relative path "images/<name>".
	Save(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
	// Remove deletes the image at relPath. It returns common.ErrInvalidFilePath
	// for paths outside the image area and common.ErrFileNotFound when
	// nothing is stored there.
	Remove(ctx context.Context, relPath string) error
	// ServeHTTP serves an image; the request path is the name with the
	// route prefix already stripped.
	http.Handler
}

// CleanPath checks that relPath points at a single file directly under the
// image area and returns the bare file name. Leading "../" segments are
// dropped before the check, so "../images/a.png" resolves to "a.png" while
// "images/../config.json" is rejected.
func CleanPath(relPath string) (string, error) {
	p := strings.ReplaceAll(strings.TrimSpace(relPath), `\`, "/")
	p = path.Clean(p)
	for strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
		p = strings.TrimPrefix(strings.TrimPrefix(p, "../"), "/")
	}

	name, ok := strings.CutPrefix(p, Prefix)
	if !ok || name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return "", common.ErrInvalidFilePath
	}
	return name, nil
}

// Canonical returns the "images/<name>" form of relPath, or relPath
// trimmed when it does not point into the image area.
func Canonical(relPath string) string {
	name, err := CleanPath(relPath)
	if err != nil {
		return strings.TrimSpace(relPath)
	}
	return Prefix + name
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9.]`)

// FileName builds a unique stored name from the client supplied file name:
// a UTC timestamp, a short random id and the sanitized original name. A
// non-empty ext (for example ".png") replaces the original extension.
func FileName(original, ext string, now time.Time) string {
	base := strings.ToLower(path.Base(strings.ReplaceAll(original, `\`, "/")))
	base = strings.TrimLeft(unsafeChars.ReplaceAllString(base, "_"), ".")
	if base == "" || base == "_" {
		base = "image"
	}
	if ext != "" {
		base = strings.TrimSuffix(base, path.Ext(base)) + ext
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", now.UTC().Format("20060102T150405.000Z"), id, base)
}
