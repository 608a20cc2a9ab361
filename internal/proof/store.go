package proof

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	dErrors "gatepass/pkg/domain-errors"
)

// Store persists proof-of-payment images. Uploads happen before the owning
// registration exists, so Save names blobs itself and returns the opaque
// path the submission later references.
type Store interface {
	Save(ctx context.Context, contentType string, r io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

// FilesystemStore keeps proof images under a single root directory, one file
// per registration.
type FilesystemStore struct {
	root string
}

func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, fmt.Errorf("proof directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create proof directory: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

var extByContentType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

func (s *FilesystemStore) Save(_ context.Context, contentType string, r io.Reader) (string, error) {
	ext, ok := extByContentType[contentType]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeValidation, "unsupported proof content type %q", contentType)
	}
	name := uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(s.root, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return "", fmt.Errorf("create proof file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write proof file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close proof file: %w", err)
	}
	return name, nil
}

func (s *FilesystemStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "proof image not found")
		}
		return nil, fmt.Errorf("open proof file: %w", err)
	}
	return f, nil
}

func (s *FilesystemStore) Remove(_ context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove proof file: %w", err)
	}
	return nil
}

// resolve rejects any path that would escape the root directory.
func (s *FilesystemStore) resolve(path string) (string, error) {
	if path == "" || strings.Contains(path, "..") || filepath.IsAbs(path) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid proof path")
	}
	full := filepath.Join(s.root, filepath.Clean(path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(filepath.Separator)) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid proof path")
	}
	return full, nil
}
