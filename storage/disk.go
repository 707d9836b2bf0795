//go:generate go run go.uber.org/mock/mockgen -source=disk.go -destination=../mocks/mock_file_source.go -package=mocks
package storage

import (
	"fileserver-lab/errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// File is a resource read from the serving root.
type File struct {
	Path     string
	Data     []byte
	MimeType string
}

// IFileSource resolves a requested resource path and reads it in full.
type IFileSource interface {
	ReadFile(requested string) (File, error)
}

// DiskFileSource serves regular files below a root directory.
// Every access goes through an os.Root, so symlinks cannot lead outside the root either.
type DiskFileSource struct {
	rootDir string
	root    *os.Root
	log     *slog.Logger
}

func NewDiskFileSource(rootDir string, log *slog.Logger) (*DiskFileSource, error) {
	root, err := os.OpenRoot(rootDir)
	if err != nil {
		return nil, fmt.Errorf("unable to open serving root %s: %w", rootDir, err)
	}
	return &DiskFileSource{rootDir: rootDir, root: root, log: log}, nil
}

// ResolvePath turns a requested resource path into a path relative to the serving root.
// A single leading separator is stripped so that absolute-looking paths are served from the root.
// Paths that still leave the root afterwards ("..", a second leading separator) are rejected.
func ResolvePath(requested string) (string, error) {
	if requested == "" || !utf8.ValidString(requested) || strings.ContainsRune(requested, 0) {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidPath, requested)
	}

	path := requested
	if path[0] == '/' || path[0] == os.PathSeparator {
		path = path[1:]
	}
	path = filepath.Clean(filepath.FromSlash(path))

	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("%w: %s", errors.ErrPathOutsideRoot, requested)
	}
	return path, nil
}

// ReadFile resolves requested against the root and reads the whole file.
// Missing entries fail with ErrResourceNotFound, anything but a regular file with ErrNotAFile.
func (d *DiskFileSource) ReadFile(requested string) (File, error) {
	path, err := ResolvePath(requested)
	if err != nil {
		return File{}, err
	}

	info, err := d.root.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return File{}, fmt.Errorf("%w: requested content %s does not exist", errors.ErrResourceNotFound, path)
	}
	if err != nil {
		if d.escapesRoot(path) {
			return File{}, fmt.Errorf("%w: %s", errors.ErrPathOutsideRoot, requested)
		}
		return File{}, err
	}
	if !info.Mode().IsRegular() {
		return File{}, fmt.Errorf("%w: request URI %s is not a file", errors.ErrNotAFile, path)
	}

	file, err := d.root.Open(path)
	if err != nil {
		return File{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return File{}, fmt.Errorf("error while reading %s: %w", path, err)
	}

	mimeType := mimetype.Detect(data).String()
	d.log.Debug("Read requested file", "path", path, "size", len(data), "mime", mimeType)

	return File{Path: path, Data: data, MimeType: mimeType}, nil
}

// escapesRoot reports whether path, once symlinks are followed, lands outside the root.
// os.Root refuses such paths without exposing a sentinel, so the cause is recovered here.
func (d *DiskFileSource) escapesRoot(path string) bool {
	root, err := filepath.EvalSymlinks(d.rootDir)
	if err != nil {
		return false
	}
	target, err := filepath.EvalSymlinks(filepath.Join(root, path))
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, target)
	return err != nil || !filepath.IsLocal(rel)
}

// Check verifies that every named file exists as a regular file below the root.
func (d *DiskFileSource) Check(names ...string) error {
	for _, name := range names {
		path, err := ResolvePath(name)
		if err != nil {
			return err
		}
		info, err := d.root.Stat(path)
		if err != nil {
			return fmt.Errorf("server can't find expected data file %s: %w", name, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%w: expected data file %s", errors.ErrNotAFile, name)
		}
	}
	return nil
}

func (d *DiskFileSource) Close() error {
	return d.root.Close()
}
