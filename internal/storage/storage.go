// Package storage provides the file storage abstraction for uploaded
// listing photos, thumbnails, and profile avatars.
//
// Two providers implement the Storage interface: LocalStorage for
// development and R2Storage (Cloudflare R2, S3-compatible) for production.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Storage defines the interface for file storage operations. All methods
// are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at the specified key. Returns ErrKeyExists if the
	// key is taken and opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the data at the specified key. The caller must close
	// the reader. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the specified key. Idempotent: deleting
	// a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a URL for accessing the object: permanent for public
	// objects, presigned with the given validity for private ones.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type. Auto-detected from the key's extension
	// or content when empty.
	ContentType string

	// MaxSize is the maximum allowed size in bytes; 0 means no limit.
	// ErrTooLarge is returned when the data exceeds it.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool

	// Public marks the object publicly readable. Listing photos and
	// avatars are public; informational only for local storage.
	Public bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where files are stored,
	// e.g. "./storage".
	BasePath string

	// BaseURL is the public URL prefix for accessing files,
	// e.g. "http://localhost:8080/files".
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the bucket's public custom-domain URL, e.g.
	// "https://media.wanderstay.com". When empty, presigned URLs are used
	// for all access.
	PublicURL string

	// Region is required by the AWS SDK; R2 accepts "auto".
	Region string
}

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)

// PropertyImageKey generates a storage key for an uploaded listing photo.
// Format: properties/{propertyID}/images/{uuid}.{ext}
func PropertyImageKey(propertyID uuid.UUID, filename string) string {
	return fmt.Sprintf("properties/%s/images/%s%s", propertyID, uuid.New(), filepath.Ext(filename))
}

// PropertyThumbnailKey generates a storage key for a listing photo
// thumbnail. Thumbnails are always JPEG.
// Format: properties/{propertyID}/thumbnails/{uuid}.jpg
func PropertyThumbnailKey(propertyID uuid.UUID) string {
	return fmt.Sprintf("properties/%s/thumbnails/%s.jpg", propertyID, uuid.New())
}

// AvatarKey generates a storage key for a user's profile photo.
// Format: avatars/{userID}/{uuid}.{ext}
func AvatarKey(userID uuid.UUID, filename string) string {
	return fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New(), filepath.Ext(filename))
}
