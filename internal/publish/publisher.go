package publish

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	lierrors "github.com/vango-dev/labeled-input/internal/errors"
)

// Uploader is the part of the S3 client a Publisher uses. *s3.Client
// satisfies it.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithLogger sets the logger. Default: slog.Default()
func WithLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = l }
}

// WithCacheControl sets the Cache-Control header of every object.
func WithCacheControl(v string) PublisherOption {
	return func(p *Publisher) { p.cacheControl = v }
}

// WithConcurrency bounds the number of uploads in flight. Default: 4
func WithConcurrency(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithGzip stores objects gzip-compressed with Content-Encoding: gzip.
func WithGzip(enabled bool) PublisherOption {
	return func(p *Publisher) { p.gzip = enabled }
}

// Publisher uploads bundles to one bucket under a key prefix.
type Publisher struct {
	client       Uploader
	bucket       string
	prefix       string
	cacheControl string
	concurrency  int
	gzip         bool
	logger       *slog.Logger
}

// NewPublisher returns a publisher for bucket. Leading and trailing slashes
// are trimmed from prefix.
func NewPublisher(client Uploader, bucket, prefix string, opts ...PublisherOption) (*Publisher, error) {
	if bucket == "" {
		return nil, lierrors.New("E041").
			WithSuggestion("Pass --bucket or set publish.bucket in labeled-input.yaml")
	}
	p := &Publisher{
		client:       client,
		bucket:       bucket,
		prefix:       strings.Trim(prefix, "/"),
		cacheControl: "public, max-age=300",
		concurrency:  4,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Key returns the object key for a bundle file.
func (p *Publisher) Key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Publish uploads every file in b and returns the keys written, in bundle
// order. After the first failed upload no new uploads start; the keys
// already written are returned with the error.
func (p *Publisher) Publish(ctx context.Context, b *Bundle) ([]string, error) {
	start := time.Now()
	done := make([]bool, len(b.Files))
	var sent atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, f := range b.Files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return lierrors.New("E040").Wrap(err)
			}
			n, err := p.put(gctx, f)
			if err != nil {
				return err
			}
			done[i] = true
			sent.Add(n)
			return nil
		})
	}
	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		err = lierrors.New("E040").Wrap(ctx.Err())
	}

	keys := make([]string, 0, len(b.Files))
	for i, f := range b.Files {
		if done[i] {
			keys = append(keys, p.Key(f.Name))
		}
	}
	if err != nil {
		return keys, err
	}

	p.logger.Info("publish: done",
		"bucket", p.bucket,
		"objects", len(keys),
		"bytes", sent.Load(),
		"duration", time.Since(start))
	return keys, nil
}

// put uploads one file and returns the number of bytes sent.
func (p *Publisher) put(ctx context.Context, f File) (int64, error) {
	key := p.Key(f.Name)
	body := f.Data
	in := &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		ContentType:  aws.String(f.ContentType),
		CacheControl: aws.String(p.cacheControl),
	}
	if p.gzip {
		var err error
		if body, err = compress(f.Data); err != nil {
			return 0, lierrors.New("E040").WithDetail("compress " + f.Name).Wrap(err)
		}
		in.ContentEncoding = aws.String("gzip")
	}
	in.Body = bytes.NewReader(body)
	in.ContentLength = aws.Int64(int64(len(body)))

	if _, err := p.client.PutObject(ctx, in); err != nil {
		return 0, lierrors.New("E040").WithDetail("s3://" + p.bucket + "/" + key).Wrap(err)
	}
	p.logger.Debug("publish: uploaded", "bucket", p.bucket, "key", key, "bytes", len(body))
	return int64(len(body)), nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
