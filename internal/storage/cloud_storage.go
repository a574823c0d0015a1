package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore signs uploads and downloads against a Google Cloud Storage bucket.
// Credentials come from the environment (GOOGLE_APPLICATION_CREDENTIALS or the metadata server).
type GCSStore struct {
	BucketName string
	Client     *gcs.Client
}

// NewGCSStore creates a Cloud Storage client for bucketName.
func NewGCSStore(ctx context.Context, bucketName string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %w", err)
	}
	return &GCSStore{BucketName: bucketName, Client: client}, nil
}

func (c *GCSStore) bucket() *gcs.BucketHandle {
	return c.Client.Bucket(c.BucketName)
}

// SignUpload creates a V4 POST policy bound to the key, content type and size limit.
func (c *GCSStore) SignUpload(_ context.Context, req UploadRequest) (*UploadAuthorization, error) {
	policy, err := c.bucket().GenerateSignedPostPolicyV4(req.Key, &gcs.PostPolicyV4Options{
		Expires: req.Expires,
		Fields:  &gcs.PolicyV4Fields{ContentType: req.ContentType},
		Conditions: []gcs.PostPolicyV4Condition{
			gcs.ConditionContentLengthRange(1, uint64(req.MaxBytes)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload policy: %w", err)
	}
	return &UploadAuthorization{
		URL:       policy.URL,
		Method:    http.MethodPost,
		Fields:    policy.Fields,
		Key:       req.Key,
		ExpiresAt: req.Expires,
	}, nil
}

// SignDownload returns a V4 signed GET URL valid for ttl.
func (c *GCSStore) SignDownload(_ context.Context, key string, ttl time.Duration) (string, error) {
	url, err := c.bucket().SignedURL(key, &gcs.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
		Scheme:  gcs.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign download url: %w", err)
	}
	return url, nil
}

// Exists reports whether key has been uploaded.
func (c *GCSStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.bucket().Object(key).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

// Delete removes key. A missing object is not an error.
func (c *GCSStore) Delete(ctx context.Context, key string) error {
	err := c.bucket().Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// DeletePrefix removes every object under prefix.
func (c *GCSStore) DeletePrefix(ctx context.Context, prefix string) error {
	it := c.bucket().Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}
		if err := c.Delete(ctx, attrs.Name); err != nil {
			return err
		}
	}
}

// Close releases the client.
func (c *GCSStore) Close() error {
	return c.Client.Close()
}
