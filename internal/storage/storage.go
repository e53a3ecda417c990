package storage

import (
	"context"
	"path"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// MediaStore hands out temporary links to exercise demonstration media.
type MediaStore interface {
	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}

// DemoVideoKey is the object key of an exercise's demonstration clip.
func DemoVideoKey(exerciseID string) string {
	return path.Join("demos", exerciseID+".mp4")
}
