package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"
)

// ObjectUploader is the write side of a blob store
type ObjectUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

// Uploader persists uploaded documents and returns the source path the
// ingestion pipeline later reads them from. With object storage
// configured documents go to s3://bucket/uploads/...; otherwise they
// land in a local directory.
type Uploader struct {
	s3       ObjectUploader
	bucket   string
	localDir string
	now      func() time.Time
}

// NewUploader creates an Uploader. s3Client may be nil; localDir is the
// fallback destination and must exist.
func NewUploader(s3Client ObjectUploader, bucket, localDir string) *Uploader {
	return &Uploader{
		s3:       s3Client,
		bucket:   bucket,
		localDir: localDir,
		now:      time.Now,
	}
}

// Save stores the document and returns its source path
func (u *Uploader) Save(ctx context.Context, filename string, body io.Reader) (string, error) {
	// timestamp prefix keeps repeated uploads of the same file distinct
	name := fmt.Sprintf("%d-%s", u.now().UnixNano(), filepath.Base(filename))

	if u.s3 != nil {
		key := "uploads/" + name
		contentType := mime.TypeByExtension(filepath.Ext(filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := u.s3.Upload(ctx, key, contentType, body); err != nil {
			return "", err
		}
		return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
	}

	path := filepath.Join(u.localDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return path, nil
}
