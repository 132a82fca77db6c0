package connectors

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/internal/tsv"
)

// SyncResult counts the objects considered by one Sync call.
type SyncResult struct {
	Fetched int
	Skipped int
}

// S3Connector stages archived GDC manifests and expression files from an
// S3-compatible bucket, such as the one DownloadData archives into.
type S3Connector struct {
	client *s3.Client
	bucket string
}

// NewS3Connector works against AWS S3 or, with an endpoint, MinIO.
func NewS3Connector(ctx context.Context, cfg appconfig.S3Config) (*S3Connector, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Connector{client: client, bucket: cfg.Bucket}, nil
}

// Sync copies every manifest and expression file under prefix into destDir.
// Files already present locally with the same size are left alone, so a
// repeated sync only fetches what is new.
func (c *S3Connector) Sync(ctx context.Context, prefix, destDir string) (SyncResult, error) {
	var res SyncResult
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return res, fmt.Errorf("list s3://%s/%s: %w", c.bucket, prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !Wanted(key) {
				continue
			}
			localPath, ok := LocalPath(destDir, prefix, key)
			if !ok {
				return res, fmt.Errorf("object key %s escapes %s", key, destDir)
			}
			if upToDate(localPath, aws.ToInt64(obj.Size)) {
				res.Skipped++
				continue
			}
			if err := c.fetch(ctx, key, localPath); err != nil {
				return res, fmt.Errorf("fetch %s: %w", key, err)
			}
			res.Fetched++
		}
	}
	return res, nil
}

// Wanted reports whether key names a metadata manifest or a recognized
// expression file.
func Wanted(key string) bool {
	if strings.HasSuffix(key, "/") {
		return false
	}
	if _, ok := tsv.FormatForFileName(key); ok {
		return true
	}
	return strings.HasSuffix(key, ".tsv")
}

// LocalPath maps an object key under prefix to a path inside destDir.
func LocalPath(destDir, prefix, key string) (string, bool) {
	rel := strings.TrimLeft(strings.TrimPrefix(key, prefix), "/")
	if rel == "" {
		return "", false
	}
	target := filepath.Join(destDir, filepath.FromSlash(rel))
	if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", false
	}
	return target, true
}

func upToDate(path string, size int64) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() == size
}

// fetch writes to a temp file first so an interrupted copy never looks
// up to date on the next sync.
func (c *S3Connector) fetch(ctx context.Context, key, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}

	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp := localPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, localPath)
}
