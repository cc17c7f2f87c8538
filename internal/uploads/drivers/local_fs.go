package drivers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"
)

// LocalFSDriver stores attachment bytes on local disk. Keys are fanned out
// into a two-level directory tree so a single directory never accumulates
// every file. Keys always carry the original file extension, so the content
// type is derived from the key instead of a metadata sidecar.
type LocalFSDriver struct {
	baseDir   string
	publicURL string
}

// NewLocalFSDriver creates the base directory if needed. publicURL is the
// URL prefix served by the download endpoint, e.g. /api/files.
func NewLocalFSDriver(baseDir, publicURL string) (*LocalFSDriver, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory: %w", err)
	}
	return &LocalFSDriver{baseDir: baseDir, publicURL: publicURL}, nil
}

func (d *LocalFSDriver) pathFor(key string) string {
	if len(key) < 4 {
		return filepath.Join(d.baseDir, key)
	}
	return filepath.Join(d.baseDir, key[0:2], key[2:4], key)
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (d *LocalFSDriver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	fullPath := d.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create fan-out directory: %w", err)
	}

	// Write to a temp name first so a partially written file never becomes
	// readable under its final key.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create attachment file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write attachment content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close attachment file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to place attachment file: %w", err)
	}
	return nil
}

func (d *LocalFSDriver) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	f, err := os.Open(d.pathFor(key))
	if err != nil {
		return nil, "", err
	}
	return f, contentTypeFor(key), nil
}

func (d *LocalFSDriver) Delete(ctx context.Context, key string) error {
	err := os.Remove(d.pathFor(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (d *LocalFSDriver) GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if d.publicURL == "" {
		return key, nil
	}
	return fmt.Sprintf("%s/%s", d.publicURL, key), nil
}
