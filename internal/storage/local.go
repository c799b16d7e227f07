// Package storage keeps uploaded assets and generated build artifacts on the
// local disk and maps them to public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"app-builder-api/internal/apperrors"
)

// AssetKind names the folder an uploaded asset is stored under
type AssetKind string

const (
	AssetIcon   AssetKind = "icons"
	AssetSplash AssetKind = "splash"
)

// URLPrefix is the route the storage root is served under
const URLPrefix = "/uploads"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// LocalStore writes files below a root directory
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates the root directory if needed
func NewLocalStore(root, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create upload root: %v", apperrors.ErrStorage, err)
	}
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Root returns the directory served under URLPrefix
func (s *LocalStore) Root() string {
	return s.root
}

// SaveUpload stores an uploaded asset as <kind>/<packageName>-<unixnano><ext>
// and returns its path relative to the root.
func (s *LocalStore) SaveUpload(ctx context.Context, kind AssetKind, packageName, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	ext = unsafeNameChars.ReplaceAllString(ext, "")
	name := fmt.Sprintf("%s-%d%s", packageName, time.Now().UnixNano(), ext)
	rel := path.Join(string(kind), name)

	if err := s.write(rel, func(f *os.File) error {
		_, err := io.Copy(f, r)
		return err
	}); err != nil {
		return "", err
	}
	return rel, nil
}

// WriteFile creates or replaces the file at rel with data
func (s *LocalStore) WriteFile(ctx context.Context, rel string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(rel, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

// Remove deletes the file at rel. A missing file is not an error.
func (s *LocalStore) Remove(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %s: %v", apperrors.ErrStorage, rel, err)
	}
	return nil
}

// URL returns the public URL of the file at rel
func (s *LocalStore) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.baseURL + URLPrefix + "/" + strings.TrimLeft(rel, "/")
}

// write goes through a temp file and rename so readers never see a partial file
func (s *LocalStore) write(rel string, fill func(*os.File) error) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("%w: create dir for %s: %v", apperrors.ErrStorage, rel, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", apperrors.ErrStorage, rel, err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", apperrors.ErrStorage, rel, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", apperrors.ErrStorage, rel, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", apperrors.ErrStorage, rel, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("%w: rename %s: %v", apperrors.ErrStorage, rel, err)
	}
	return nil
}

func (s *LocalStore) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fmt.Errorf("%w: empty storage path", apperrors.ErrStorage)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
