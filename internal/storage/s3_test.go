package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"selfcc/care-app/internal/config"
)

func TestNewS3Storage_DisabledWithoutBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestPresignDownload_UsesEndpointAndKey(t *testing.T) {
	store, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://minio.local:9000",
		Region:          "us-east-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		BucketName:      "care-media",
	}, zap.NewNop())
	require.NoError(t, err)

	raw, err := store.GeneratePresignedDownloadURL(context.Background(), DemoVideoKey("3"), 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "minio.local:9000", u.Host)
	assert.Equal(t, "/care-media/demos/3.mp4", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "AKIDEXAMPLE/"))
}

func TestDemoVideoKey(t *testing.T) {
	assert.Equal(t, "demos/abc.mp4", DemoVideoKey("abc"))
}
