package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/config"
	"github.com/stretchr/testify/require"
)

func TestPresignedURLIsLocal(t *testing.T) {
	// with an explicit region presigning needs no round trip to the server
	mc, err := minio.New("minio.local:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	s := &MinIOStorage{client: mc, bucket: "douban"}

	u, err := s.PresignedURL(context.Background(), "groups/g1.png", 10*time.Minute)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "http://minio.local:9000/douban/groups/g1.png?"), u)
	require.Contains(t, u, "X-Amz-Signature=")
}

func TestNewMinIOStorageRequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{})
	require.Error(t, err)
}
