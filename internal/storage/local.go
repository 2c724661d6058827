package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the route under which stored blobs are served.
const URLPrefix = "/files/"

var ErrInvalidPath = errors.New("invalid storage path")

// Store uploads blobs by path and hands back their public URL.
type Store interface {
	Upload(ctx context.Context, objectPath string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Local keeps blobs on disk under Root. The HTTP router serves Root at
// URLPrefix.
type Local struct {
	Root    string
	BaseURL string
}

func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &Local{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// NewObjectPath returns a collision-free path inside folder keeping ext.
func NewObjectPath(folder, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(folder, uuid.NewString()+strings.ToLower(ext))
}

func (s *Local) Upload(ctx context.Context, objectPath string, r io.Reader) (string, error) {
	clean, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.Root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.URLFor(clean), nil
}

// Delete removes the blob behind url. Unknown URLs and missing files are
// not errors.
func (s *Local) Delete(ctx context.Context, url string) error {
	objectPath, ok := s.PathFor(url)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(objectPath)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Local) URLFor(objectPath string) string {
	return s.BaseURL + URLPrefix + objectPath
}

// PathFor maps a URL produced by this store back to its object path.
func (s *Local) PathFor(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, s.BaseURL+URLPrefix)
	if !ok || rest == "" {
		return "", false
	}
	clean, err := cleanPath(rest)
	if err != nil {
		return "", false
	}
	return clean, true
}

func cleanPath(p string) (string, error) {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return "", ErrInvalidPath
	}
	return p, nil
}
