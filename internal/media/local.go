package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalUploader stores files under a directory that the HTTP server
// exposes at publicURL. Meant for development and single-node setups.
type LocalUploader struct {
	dir       string
	publicURL string
}

func NewLocalUploader(dir, publicURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalUploader{dir: dir, publicURL: publicURL}, nil
}

func (u *LocalUploader) Upload(ctx context.Context, localPath string) (*Result, error) {
	if localPath == "" {
		return nil, ErrNoFile
	}
	defer removeLocal(localPath)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	key := objectKey("", localPath)
	dst := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, err
	}

	out, err := os.Create(dst)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return nil, fmt.Errorf("copy %s: %w", localPath, err)
	}
	if err := out.Close(); err != nil {
		return nil, err
	}

	return &Result{URL: joinURL(u.publicURL, key), Key: key}, nil
}
