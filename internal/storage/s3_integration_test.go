//go:build integration

package storage

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3ClientIntegration_ArchiveLifecycle(t *testing.T) {
	ctx := context.Background()

	s3Container := testutil.NewRustFSContainer(ctx, t)
	defer s3Container.Terminate(ctx)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        s3Container.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "filings",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	require.NoError(t, client.EnsureBucket(ctx))
	// Idempotent when the bucket already exists.
	require.NoError(t, client.EnsureBucket(ctx))

	body := []byte("<html><body>Annual report fiscal 2023</body></html>")

	t.Run("ArchiveFiling stores the document", func(t *testing.T) {
		require.NoError(t, client.ArchiveFiling(ctx, "AAPL_2023_10K.html", body))
	})

	t.Run("GenerateDownloadURL serves the archived document", func(t *testing.T) {
		url, err := client.GenerateDownloadURL(ctx, "AAPL_2023_10K.html")
		require.NoError(t, err)
		assert.Contains(t, url, s3Container.Endpoint())

		resp, err := http.Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		downloaded, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, body, downloaded)
	})

	t.Run("DeleteObject removes the document", func(t *testing.T) {
		require.NoError(t, client.DeleteObject(ctx, "AAPL_2023_10K.html"))

		url, err := client.GenerateDownloadURL(ctx, "AAPL_2023_10K.html")
		require.NoError(t, err)

		resp, err := http.Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
