// Package s3 stores tables as CSV objects in an S3-compatible bucket (AWS S3
// or MinIO). Each table is one object named <prefix><table>.csv.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/JonMunkholm/basedata/internal/frame"
)

// ErrTableNotFound is returned by ReadTable for a missing object.
var ErrTableNotFound = errors.New("table not found")

const (
	extension   = ".csv"
	contentType = "text/csv"
)

// Config holds the construction parameters of a Store.
type Config struct {
	Bucket    string
	Region    string // default us-east-1
	Endpoint  string // optional, e.g. a MinIO URL
	Prefix    string
	PathStyle bool
}

// Store writes and reads tables in a single bucket.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates a Store from cfg using the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *s3.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key of table name.
func (s *Store) Key(name string) string { return s.prefix + name + extension }

// WriteTable uploads t as CSV, replacing any previous object of that name.
func (s *Store) WriteTable(ctx context.Context, name string, t *frame.Table) error {
	var buf bytes.Buffer
	if err := frame.WriteCSV(&buf, t); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	key := s.Key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// ReadTable downloads and parses the object of table name.
func (s *Store) ReadTable(ctx context.Context, name string, opts ...frame.ReadOption) (*frame.Table, error) {
	key := s.Key(name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	t, err := frame.ReadCSV(out.Body, opts...)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return t, nil
}

// Tables lists the stored table names in lexical order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	var names []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: aws.String(s.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			key := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if name, ok := strings.CutSuffix(key, extension); ok && !strings.Contains(name, "/") {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
