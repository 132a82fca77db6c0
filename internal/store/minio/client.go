// Package minio archives GDC manifests and expression files to an object
// store so later ingests can sync them instead of downloading again.
package minio

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/internal/tsv"
)

// Client implements gdc.Archiver on a MinIO bucket.
type Client struct {
	mc     *minio.Client
	bucket string
	prefix string
}

func NewClient(cfg config.MinIOConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Client{mc: mc, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// EnsureBucket creates the archive bucket if it does not exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", c.bucket, err)
	}
	return nil
}

// ArchiveFile uploads the local file at localPath under the archive prefix.
// An object of the same size already in the bucket is kept as is.
func (c *Client) ArchiveFile(ctx context.Context, name, localPath string) error {
	fi, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}
	key := c.ObjectKey(name)
	if info, err := c.mc.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{}); err == nil && info.Size == fi.Size() {
		return nil
	}
	_, err = c.mc.FPutObject(ctx, c.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: ContentType(name),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// ObjectKey places name under the configured prefix.
func (c *Client) ObjectKey(name string) string {
	if c.prefix == "" {
		return name
	}
	return path.Join(strings.TrimSuffix(c.prefix, "/"), name)
}

// ContentType is the MIME type stored with an archived file.
func ContentType(name string) string {
	if f, ok := tsv.FormatForFileName(name); ok && f == tsv.FormatMiRNA {
		return "text/plain"
	}
	if strings.HasSuffix(name, ".tsv") {
		return "text/tab-separated-values"
	}
	return "application/octet-stream"
}

func (c *Client) Bucket() string {
	return c.bucket
}
