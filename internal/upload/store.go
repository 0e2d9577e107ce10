// Package upload stores media attached to journal posts on local disk.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// PublicPrefix is the URL path stored media is served under.
const PublicPrefix = "/uploads/"

// allowedTypes maps sniffed content types to the stored file extension.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
}

// File is one uploaded form file.
type File struct {
	Filename string
	Content  []byte
}

// Store writes uploads as <uuid><ext> under dir.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxBytes int64) *Store {
	return &Store{dir: dir, maxBytes: maxBytes}
}

// Dir is the directory served at PublicPrefix.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates f and writes it, returning its public URL.
func (s *Store) Save(ctx context.Context, f File) (string, error) {
	if len(f.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(f.Content)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	contentType := http.DetectContentType(f.Content)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", models.NewValidationError("Unsupported media type")
	}
	if strings.HasPrefix(contentType, "image/") {
		if _, _, err := image.DecodeConfig(bytes.NewReader(f.Content)); err != nil {
			return "", models.NewValidationError("Invalid image file")
		}
	}

	if err := ctx.Err(); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ext
	if err := writeFile(filepath.Join(s.dir, name), f.Content); err != nil {
		return "", models.NewInternalError(err)
	}
	return PublicPrefix + name, nil
}

// Remove deletes the file behind a URL returned by Save. URLs that do not
// point into the store are ignored.
func (s *Store) Remove(url string) error {
	name, ok := strings.CutPrefix(url, PublicPrefix)
	if !ok || name == "" || name != filepath.Base(name) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload %s: %w", name, err)
	}
	return nil
}

// writeFile writes through a temp file so readers never see partial content.
func writeFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod upload: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
