package media

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/covercellhq/covercell-backend/pkg/config"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
)

// Upload describes an incoming multipart file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Stored references a persisted upload on disk.
type Stored struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Store writes validated image uploads to the local uploads directory. Names
// carry a timestamp plus a random suffix so concurrent uploads never collide.
type Store struct {
	dir       string
	urlPrefix string
	maxBytes  int64
}

// NewStore ensures the uploads directory exists and returns a store for it.
func NewStore(cfg config.UploadsConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("uploads directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	maxBytes := int64(cfg.MaxUploadMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &Store{
		dir:       cfg.Dir,
		urlPrefix: strings.TrimSuffix(cfg.URLPrefix, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// MaxBytes reports the configured per-file size cap.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// SaveImage validates and persists one image upload. The field name becomes
// the filename prefix so front/back photos are distinguishable on disk.
func (s *Store) SaveImage(field string, up Upload) (*Stored, error) {
	if up.Content == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s file is required", field))
	}
	if up.Size > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s exceeds the %dMB upload limit", field, s.maxBytes/(1024*1024)))
	}
	mediaType, err := sniffMimeType(up.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s must be an image upload", field))
	}

	name := uniqueName(field, up.Filename)
	fullPath := filepath.Join(s.dir, name)

	out, err := os.Create(fullPath)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating upload file")
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(up.Content, s.maxBytes+1))
	if err != nil {
		os.Remove(fullPath)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing upload file")
	}
	if written > s.maxBytes {
		os.Remove(fullPath)
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s exceeds the %dMB upload limit", field, s.maxBytes/(1024*1024)))
	}

	return &Stored{
		Name: name,
		Path: fullPath,
		URL:  s.urlPrefix + "/" + name,
	}, nil
}

// Dir returns the directory uploads are written to, for the file server route.
func (s *Store) Dir() string {
	return s.dir
}

func sniffMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	return strings.ToLower(mediaType), nil
}

func uniqueName(field, original string) string {
	ext := strings.ToLower(path.Ext(original))
	if ext == "" {
		ext = ".bin"
	}
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err == nil {
		return fmt.Sprintf("%s-%d-%d%s", field, time.Now().UnixMilli(), binary.BigEndian.Uint32(buf[:]), ext)
	}
	return fmt.Sprintf("%s-%d%s", field, time.Now().UnixNano(), ext)
}
