package s3client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	appConfig "cloudpull/config"
	"cloudpull/internal/remote"
)

type Client struct {
	s3Client *s3.Client
	config   *appConfig.Config
}

func New(cfg *appConfig.Config) (*Client, error) {
	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client: s3Client,
		config:   cfg,
	}, nil
}

// List returns the immediate children of an s3:// root: objects under the
// prefix as files, common prefixes as folders.
func (c *Client) List(ctx context.Context, root string) ([]remote.Entry, error) {
	bucket, prefix, err := splitURL(root)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	entries := make([]remote.Entry, 0)

	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, c.wrap("list", root, err)
		}

		for _, cp := range page.CommonPrefixes {
			p := aws.ToString(cp.Prefix)
			entries = append(entries, remote.Entry{
				Path: objectURL(bucket, p),
				Name: remote.BaseName(p),
				Kind: remote.KindFolder,
				Size: -1,
			})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue // directory marker for the listed prefix itself
			}
			entries = append(entries, remote.Entry{
				Path: objectURL(bucket, key),
				Name: remote.BaseName(key),
				Kind: remote.KindFile,
				Size: aws.ToInt64(obj.Size),
			})
		}
	}

	return entries, nil
}

// Size reports the byte count of a single object, or the recursive sum for
// a folder path (trailing slash).
func (c *Client) Size(ctx context.Context, path string) (int64, error) {
	bucket, key, err := splitURL(path)
	if err != nil {
		return -1, err
	}

	if key == "" || strings.HasSuffix(key, "/") {
		return c.prefixSize(ctx, bucket, key, path)
	}

	head, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return -1, c.wrap("size", path, err)
	}
	return aws.ToInt64(head.ContentLength), nil
}

func (c *Client) prefixSize(ctx context.Context, bucket, prefix, path string) (int64, error) {
	var total int64

	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return -1, c.wrap("size", path, err)
		}
		for _, obj := range page.Contents {
			total += aws.ToInt64(obj.Size)
		}
	}
	return total, nil
}

// Copy downloads one object or one prefix tree, skipping destination files
// that already exist.
func (c *Client) Copy(ctx context.Context, req remote.CopyRequest) (remote.CopyResult, error) {
	bucket, key, err := splitURL(req.Source)
	if err != nil {
		return remote.CopyResult{}, err
	}

	downloader := manager.NewDownloader(c.s3Client, func(d *manager.Downloader) {
		if req.Threads > 0 {
			d.Concurrency = req.Threads
		}
	})

	if req.Kind == remote.KindFile {
		var result remote.CopyResult
		copied, err := c.downloadObject(ctx, downloader, bucket, key, req.Destination)
		if err != nil {
			return result, err
		}
		if copied {
			result.Copied = 1
		} else {
			result.Skipped = 1
		}
		return result, nil
	}

	prefix := strings.TrimSuffix(key, "/") + "/"
	var result remote.CopyResult

	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return result, c.wrap("copy", req.Source, err)
		}
		for _, obj := range page.Contents {
			objKey := aws.ToString(obj.Key)
			if strings.HasSuffix(objKey, "/") {
				continue
			}
			rel := strings.TrimPrefix(objKey, prefix)
			dst := filepath.Join(req.Destination, filepath.FromSlash(rel))

			copied, err := c.downloadObject(ctx, downloader, bucket, objKey, dst)
			if err != nil {
				return result, err
			}
			if copied {
				result.Copied++
			} else {
				result.Skipped++
			}
		}
	}

	return result, nil
}

func (c *Client) downloadObject(ctx context.Context, downloader *manager.Downloader, bucket, key, dst string) (bool, error) {
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}

	source := objectURL(bucket, key)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, &remote.Error{Kind: remote.ErrorUnwritable, Op: "download", Path: source, Err: err}
	}
	file, err := os.Create(dst)
	if err != nil {
		return false, &remote.Error{Kind: remote.ErrorUnwritable, Op: "download", Path: source, Err: err}
	}
	defer file.Close()

	_, err = downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		// A truncated file left behind would be silently skipped on the
		// next run, so remove it before reporting the failure.
		file.Close()
		os.Remove(dst)
		return false, c.wrap("download", source, err)
	}
	return true, nil
}

func (c *Client) wrap(op, path string, err error) error {
	return &remote.Error{Kind: errorKind(err), Op: "s3 " + op, Path: path, Err: err}
}

func errorKind(err error) remote.ErrorKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return remote.ErrorCancelled
	}

	var noBucket *types.NoSuchBucket
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noBucket) || errors.As(err, &noKey) || errors.As(err, &notFound) {
		return remote.ErrorNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "NoSuchKey", "NotFound":
			return remote.ErrorNotFound
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return remote.ErrorPermissionDenied
		case "RequestTimeout", "SlowDown", "ServiceUnavailable":
			return remote.ErrorNetwork
		}
		return remote.ErrorUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return remote.ErrorNetwork
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return remote.ErrorUnwritable
	}
	return remote.ErrorUnknown
}

func splitURL(raw string) (bucket, key string, err error) {
	u, err := remote.ParseURL(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("unsupported scheme %q for S3 client", u.Scheme)
	}
	return u.Bucket, u.Path, nil
}

func objectURL(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
