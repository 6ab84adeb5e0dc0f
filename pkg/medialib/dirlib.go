package medialib

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DirLibrary is a Service backed by a directory tree: each album is a
// subdirectory, assets keep their file extension and get a uuid name.
type DirLibrary struct {
	root string
}

// NewDirLibrary opens (creating if needed) a directory-backed library.
func NewDirLibrary(root string) (*DirLibrary, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("medialib: open library: %w", err)
	}
	return &DirLibrary{root: root}, nil
}

func (l *DirLibrary) Save(req SaveRequest) (Asset, error) {
	dir := l.root
	if req.Album != "" {
		dir = filepath.Join(l.root, req.Album)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Asset{}, fmt.Errorf("medialib: create album: %w", err)
		}
	}

	id := uuid.NewString()
	dst := filepath.Join(dir, id+filepath.Ext(req.FilePath))
	if err := moveFile(req.FilePath, dst); err != nil {
		return Asset{}, fmt.Errorf("medialib: %w: %v", ErrNotSaved, err)
	}

	if !req.Date.IsZero() {
		os.Chtimes(dst, req.Date, req.Date)
	}

	return Asset{
		ID:      id,
		Kind:    req.Kind,
		Album:   req.Album,
		Path:    dst,
		SavedAt: time.Now(),
	}, nil
}

// moveFile renames src to dst, falling back to copy-and-delete when the two
// paths are on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
