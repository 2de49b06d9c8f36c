// Package s3blob implements blob.Store on any S3-compatible object storage
// (AWS S3, MinIO, Supabase Storage's S3 endpoint) using minio-go.
package s3blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"rightfit/pkg/blob"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options configures the S3 client.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	UseSSL    bool
	// CreateBucket creates the bucket on start-up when it does not exist.
	CreateBucket bool
}

// Bucket stores blobs as objects in a single bucket.
type Bucket struct {
	client *minio.Client
	bucket string
}

var _ blob.Store = (*Bucket)(nil)

// New connects to the endpoint and optionally ensures the bucket exists.
func New(ctx context.Context, opts Options) (*Bucket, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create s3 client: %w", err)
	}

	if opts.CreateBucket {
		exists, err := client.BucketExists(ctx, opts.Bucket)
		if err != nil {
			return nil, fmt.Errorf("could not check bucket: %w", err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
				return nil, fmt.Errorf("could not create bucket: %w", err)
			}
		}
	}

	return &Bucket{client: client, bucket: opts.Bucket}, nil
}

func (b *Bucket) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("could not put object: %w", err)
	}

	return nil
}

func (b *Bucket) Open(ctx context.Context, key string) (*blob.Object, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapErr(err, "could not get object")
	}

	// GetObject is lazy; Stat surfaces missing keys.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()

		return nil, mapErr(err, "could not stat object")
	}

	return &blob.Object{ReadCloser: obj, ContentType: info.ContentType, Size: info.Size}, nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	if _, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{}); err != nil {
		return mapErr(err, "could not stat object")
	}
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("could not remove object: %w", err)
	}

	return nil
}

func mapErr(err error, msg string) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return blob.ErrNotFound
	}

	return fmt.Errorf("%s: %w", msg, err)
}
