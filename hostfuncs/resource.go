package hostfuncs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	xcontext "github.com/reglet-dev/xsd-bridge/internal/context"
	"github.com/reglet-dev/xsd-bridge/wireformat"
)

// ReadResourceName is the host function the guest calls to read schema
// documents, includes and other engine resources.
const ReadResourceName = "read_resource"

// DefaultMaxResourceSize bounds a single resource read (8MB).
const DefaultMaxResourceSize = 8 * 1024 * 1024

// ResourceReader serves read_resource requests from a fixed list of root
// directories. Paths never escape their root: relative paths are tried against
// each root in order and absolute paths must lie inside one of them.
type ResourceReader struct {
	roots   []string
	maxSize int
}

// NewResourceReader creates a reader over roots. Empty roots are skipped.
func NewResourceReader(maxSize int, roots ...string) *ResourceReader {
	if maxSize <= 0 {
		maxSize = DefaultMaxResourceSize
	}
	r := &ResourceReader{maxSize: maxSize}
	for _, root := range roots {
		if root == "" {
			continue
		}
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		r.roots = append(r.roots, root)
	}
	return r
}

// Roots returns the absolute root directories.
func (r *ResourceReader) Roots() []string {
	out := make([]string, len(r.roots))
	copy(out, r.roots)
	return out
}

// Read performs one read_resource request.
func (r *ResourceReader) Read(ctx context.Context, req wireformat.ReadResourceRequest) wireformat.ReadResourceResponse {
	ctx, cancel := xcontext.WireToContext(ctx, req.Context)
	defer cancel()

	if req.Path == "" {
		return resourceError("validation", "path cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		resp := resourceError("timeout", err.Error())
		resp.Error.IsTimeout = true
		return resp
	}

	for _, root := range r.roots {
		rel, ok := r.relativeTo(root, req.Path)
		if !ok {
			continue
		}
		data, truncated, err := r.readIn(root, rel)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return resourceError("internal", err.Error())
		}
		return wireformat.ReadResourceResponse{
			Path:      filepath.Join(root, rel),
			Data:      data,
			Truncated: truncated,
		}
	}

	resp := resourceError("not_found", fmt.Sprintf("resource %q not found", req.Path))
	resp.Error.IsNotFound = true
	return resp
}

// relativeTo maps path onto root, reporting false when it would leave root.
func (r *ResourceReader) relativeTo(root, path string) (string, bool) {
	if !filepath.IsAbs(path) {
		rel := filepath.Clean(path)
		return rel, filepath.IsLocal(rel)
	}
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	return rel, true
}

// readIn opens rel through an os.Root so symlinks cannot leave root either.
func (r *ResourceReader) readIn(root, rel string) ([]byte, bool, error) {
	dir, err := os.OpenRoot(root)
	if err != nil {
		return nil, false, err
	}
	defer dir.Close()

	f, err := dir.Open(rel)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(r.maxSize)+1))
	if err != nil {
		return nil, false, err
	}
	if len(data) > r.maxSize {
		return data[:r.maxSize], true, nil
	}
	return data, false, nil
}

func resourceError(kind, msg string) wireformat.ReadResourceResponse {
	return wireformat.ReadResourceResponse{
		Error: &wireformat.ErrorDetail{Type: kind, Message: msg, Code: strings.ToUpper(kind)},
	}
}

// WithResourceReader registers r as the read_resource host function.
func WithResourceReader(r *ResourceReader) RegistryOption {
	return WithFunction(ReadResourceName, JSON(r.Read))
}
