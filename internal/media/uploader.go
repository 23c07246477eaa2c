// Package media uploads user images to durable storage and hands back the
// URL they are served from.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tubeaccounts/backend/internal/config"
	"github.com/tubeaccounts/backend/pkg/logger"
)

var ErrNoFile = errors.New("media: no file to upload")

// Result describes a stored object.
type Result struct {
	URL string
	Key string
}

// Uploader moves a local file to durable storage. Implementations delete
// the local file after every attempt, successful or not.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (*Result, error)
}

// New builds the uploader selected by cfg.Driver.
func New(ctx context.Context, cfg config.UploadConfig) (Uploader, error) {
	switch cfg.Driver {
	case "local":
		return NewLocalUploader(cfg.Local.Dir, cfg.Local.PublicURL)
	case "s3":
		return NewS3Uploader(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported upload driver: %s", cfg.Driver)
	}
}

// objectKey is prefix/yyyy/mm/dd/<uuid><ext>.
func objectKey(prefix, localPath string) string {
	d := time.Now().UTC()
	ext := strings.ToLower(filepath.Ext(localPath))
	key := fmt.Sprintf("%04d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

func removeLocal(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Str("path", path).Msg("failed to remove uploaded temp file")
	}
}
