package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kailas-cloud/recommender/internal/domain"
)

// S3Config holds object storage connection settings.
type S3Config struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

type downloader interface {
	Download(
		ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader),
	) (int64, error)
}

// S3Source downloads the catalog object into memory.
type S3Source struct {
	bucket     string
	key        string
	downloader downloader
}

// NewS3Source creates an S3 catalog source. Static credentials are used when both keys
// are set, otherwise the default AWS credential chain applies.
func NewS3Source(ctx context.Context, bucket, key string, cfg S3Config) (*S3Source, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Source(bucket, key, manager.NewDownloader(client)), nil
}

func newS3Source(bucket, key string, d downloader) *S3Source {
	return &S3Source{bucket: bucket, key: key, downloader: d}
}

// Open downloads the whole object. NoSuchKey and 404 map to domain.ErrCatalogNotFound.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("catalog %s: %w", s.Location(), domain.ErrCatalogNotFound)
		}
		return nil, fmt.Errorf("download catalog %s: %w", s.Location(), err)
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

// Location returns the s3:// URI of the object.
func (s *S3Source) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var status interface{ HTTPStatusCode() int }
	return errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound
}

// parseS3URI splits s3://bucket/key. Both parts must be non-empty.
func parseS3URI(location string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
