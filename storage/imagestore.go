package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"adboard/utils"
)

// allowedExtensions is the fixed allow-list of image file extensions.
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

// ImageStore persists uploaded image files under a single directory.
// Identifiers are generated at save time, never derived from the caller's
// filename, so they cannot collide or traverse outside the directory.
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore creates the upload directory if needed and returns a store.
// maxBytes caps the size of a single upload; zero or negative disables the cap.
func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ImageStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save validates the claimed filename, persists the bytes under a fresh
// identifier (random token + validated extension) and returns the identifier.
// No file is left behind on any failure path.
func (s *ImageStore) Save(r io.Reader, claimedFilename string) (string, error) {
	name := strings.TrimSpace(claimedFilename)
	if name == "" {
		return "", ErrEmptyFilename
	}

	dot := strings.LastIndex(name, ".")
	if dot < 0 || dot == len(name)-1 {
		return "", ErrInvalidExtension
	}
	ext := strings.ToLower(name[dot+1:])
	if !allowedExtensions[ext] {
		return "", ErrInvalidExtension
	}

	id := strings.ReplaceAll(uuid.New().String(), "-", "") + "." + ext
	dst := filepath.Join(s.dir, id)

	// O_EXCL: identifiers are generated, never reused; an existing file here
	// means something is wrong and must not be overwritten.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	src := r
	if s.maxBytes > 0 {
		src = &io.LimitedReader{R: r, N: s.maxBytes + 1}
	}
	written, err := io.Copy(out, src)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = os.Remove(dst)
		return "", ErrImageTooLarge
	}

	return id, nil
}

// Exists reports whether the identifier resolves to a stored file.
func (s *ImageStore) Exists(identifier string) bool {
	path, ok := s.path(identifier)
	if !ok {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Delete removes the file if present. A missing file is not an error and
// any other I/O failure is logged and swallowed: deletion is best-effort.
func (s *ImageStore) Delete(identifier string) {
	path, ok := s.path(identifier)
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("image delete failed id=%s err=%v", identifier, err)
		}
	}
}

// Retrieve opens the stored file for reading. The caller closes it.
func (s *ImageStore) Retrieve(identifier string) (io.ReadCloser, error) {
	path, ok := s.path(identifier)
	if !ok {
		return nil, ErrImageNotFound
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return f, nil
}

// List returns the identifiers of every stored file.
func (s *ImageStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// Stat returns file metadata for age checks in the orphan sweeper.
func (s *ImageStore) Stat(identifier string) (os.FileInfo, error) {
	path, ok := s.path(identifier)
	if !ok {
		return nil, ErrImageNotFound
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return info, nil
}

// path maps an identifier to a filesystem path. Identifiers containing path
// separators or dot segments never resolve.
func (s *ImageStore) path(identifier string) (string, bool) {
	if identifier == "" || identifier == "." || identifier == ".." {
		return "", false
	}
	if filepath.Base(identifier) != identifier {
		return "", false
	}
	return filepath.Join(s.dir, identifier), true
}
