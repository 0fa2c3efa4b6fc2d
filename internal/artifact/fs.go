// Package artifact writes generated files beneath a fixed workspace root.
// file: internal/artifact/fs.go
package artifact

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/logging"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
)

// FS writes files relative to a workspace root. Paths that would leave the
// root are refused by the operating system layer. Safe for concurrent use.
type FS struct {
	root   *os.Root
	dir    string
	logger logging.Logger
}

// Open creates dir if needed and roots an FS there.
func Open(dir string, logger logging.Logger) (*FS, error) {
	if dir == "" {
		return nil, errors.New("artifact: workspace root must not be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "artifact: resolve %s", dir)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrapf(err, "artifact: create workspace root %s", abs)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "artifact: open workspace root %s", abs)
	}
	return &FS{
		root:   root,
		dir:    abs,
		logger: logging.OrNoop(logger).WithField("component", "artifact_fs"),
	}, nil
}

// Dir returns the absolute workspace root.
func (f *FS) Dir() string {
	return f.dir
}

// Close releases the root handle.
func (f *FS) Close() error {
	return f.root.Close()
}

// CreateDir creates rel and any missing parents. It fails if rel already
// exists, so two callers can never share a fresh directory.
func (f *FS) CreateDir(rel string) error {
	name, err := clean(rel)
	if err != nil {
		return err
	}
	if err := f.mkdirParents(name); err != nil {
		return err
	}
	if err := f.root.Mkdir(name, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return mcperrors.IoError(fmt.Sprintf("directory '%s' already exists", rel), err).WithDetail(rel)
		}
		return mcperrors.IoError(fmt.Sprintf("failed to create directory '%s'", rel), err)
	}
	f.logger.Debug("Created directory.", "path", rel)
	return nil
}

// WriteFile writes content to rel, creating parent directories and
// replacing any existing file.
func (f *FS) WriteFile(rel, content string) error {
	name, err := clean(rel)
	if err != nil {
		return err
	}
	if err := f.mkdirParents(name); err != nil {
		return err
	}
	file, err := f.root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return mcperrors.IoError(fmt.Sprintf("failed to open '%s' for writing", rel), err)
	}
	if _, err := file.WriteString(content); err != nil {
		_ = file.Close()
		return mcperrors.IoError(fmt.Sprintf("failed to write '%s'", rel), err)
	}
	if err := file.Close(); err != nil {
		return mcperrors.IoError(fmt.Sprintf("failed to write '%s'", rel), err)
	}
	f.logger.Debug("Wrote file.", "path", rel, "bytes", len(content))
	return nil
}

// ReadFile returns the content of rel.
func (f *FS) ReadFile(rel string) (string, error) {
	name, err := clean(rel)
	if err != nil {
		return "", err
	}
	file, err := f.root.Open(name)
	if err != nil {
		return "", mcperrors.IoError(fmt.Sprintf("failed to open '%s'", rel), err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", mcperrors.IoError(fmt.Sprintf("failed to read '%s'", rel), err)
	}
	return string(data), nil
}

// mkdirParents creates each missing ancestor of name.
func (f *FS) mkdirParents(name string) error {
	parent := filepath.Dir(name)
	if parent == "." {
		return nil
	}
	parts := strings.Split(parent, string(filepath.Separator))
	for i := range parts {
		dir := filepath.Join(parts[:i+1]...)
		if err := f.root.Mkdir(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return mcperrors.IoError(fmt.Sprintf("failed to create directory '%s'", filepath.ToSlash(dir)), err)
		}
	}
	return nil
}

// clean converts a slash-separated relative path to an OS path.
func clean(rel string) (string, error) {
	if rel == "" {
		return "", mcperrors.InvalidArgument("path", "must not be empty")
	}
	p := path.Clean(rel)
	if p == "." || path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return "", mcperrors.InvalidArgument("path", fmt.Sprintf("'%s' is outside the workspace", rel))
	}
	return filepath.FromSlash(p), nil
}
