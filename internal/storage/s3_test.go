//go:build integration

package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Client_RoundTrip(t *testing.T) {
	ctx := context.Background()

	rc := testutil.NewRustFSContainer(ctx, t)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "test-screenshots",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.EnsureBucket(ctx))

	body := []byte("\x89PNG\r\n\x1a\nscreenshot")
	require.NoError(t, client.PutObject(ctx, "site-1.png", "image/png", bytes.NewReader(body), int64(len(body))))
	require.NoError(t, client.HeadObject(ctx, "site-1.png"))

	url, err := client.GenerateDownloadURL(ctx, "site-1.png")
	require.NoError(t, err)

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	require.NoError(t, client.DeleteObject(ctx, "site-1.png"))
	assert.ErrorIs(t, client.HeadObject(ctx, "site-1.png"), domain.ErrObjectNotFound)
}
