// Package storage signs direct-to-bucket uploads and downloads of resume files.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"jobportal-backend/internal/config"
)

// UploadRequest describes the only object a client may upload with a signed form.
type UploadRequest struct {
	Key         string
	ContentType string
	MaxBytes    int64
	Expires     time.Time
}

// UploadAuthorization is what a client needs to POST the file straight to the bucket.
type UploadAuthorization struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Fields    map[string]string `json:"fields"`
	Key       string            `json:"key"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// ObjectStore is the subset of a bucket the resume flow needs.
type ObjectStore interface {
	SignUpload(ctx context.Context, req UploadRequest) (*UploadAuthorization, error)
	SignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// New builds the store selected by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Provider {
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket)
	case "minio":
		return NewMinioStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// ResumeKey returns the object key of a resume: resumes/<seeker>/<resume><ext>.
func ResumeKey(seekerID, resumeID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\ ") {
		ext = ""
	}
	return fmt.Sprintf("resumes/%s/%s%s", seekerID, resumeID, ext)
}

// SeekerPrefix returns the key prefix holding every resume of a seeker.
func SeekerPrefix(seekerID string) string {
	return fmt.Sprintf("resumes/%s/", seekerID)
}
