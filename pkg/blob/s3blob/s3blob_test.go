package s3blob_test

import (
	"context"
	"fmt"
	"io"
	"rightfit/pkg/blob"
	"rightfit/pkg/blob/s3blob"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	accessKey = "minioadmin"
	secretKey = "minioadmin"
)

func startMinio(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     accessKey,
				"MINIO_ROOT_PASSWORD": secretKey,
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%d", host, port.Int())
}

func TestBucket_RoundTrip(t *testing.T) {
	endpoint := startMinio(t)
	ctx := context.Background()

	b, err := s3blob.New(ctx, s3blob.Options{
		Endpoint:     endpoint,
		AccessKey:    accessKey,
		SecretKey:    secretKey,
		Bucket:       "cvs",
		CreateBucket: true,
	})
	require.NoError(t, err)

	const body = "%PDF-1.4 fake"
	require.NoError(t, b.Put(ctx, "cv/abc/cv.pdf", strings.NewReader(body), int64(len(body)), "application/pdf"))

	obj, err := b.Open(ctx, "cv/abc/cv.pdf")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", obj.ContentType)
	require.Equal(t, int64(len(body)), obj.Size)
	got, err := io.ReadAll(obj)
	require.NoError(t, err)
	require.NoError(t, obj.Close())
	require.Equal(t, body, string(got))

	require.NoError(t, b.Delete(ctx, "cv/abc/cv.pdf"))
	_, err = b.Open(ctx, "cv/abc/cv.pdf")
	require.ErrorIs(t, err, blob.ErrNotFound)
	require.ErrorIs(t, b.Delete(ctx, "cv/abc/cv.pdf"), blob.ErrNotFound)
}
