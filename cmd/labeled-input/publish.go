package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	lierrors "github.com/vango-dev/labeled-input/internal/errors"
	"github.com/vango-dev/labeled-input/internal/publish"
)

func (c *cli) publishCmd() *cobra.Command {
	var (
		bucket   string
		prefix   string
		region   string
		endpoint string
		title    string
		attrs    []string
		dryRun   bool
		gzip     bool
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Render the element and upload it to S3",
		Long: `Render the static bundle and upload index.html and labeled-input.css
to an S3 bucket. Credentials come from the standard AWS chain.

Examples:
  labeled-input publish --bucket=my-site --prefix=demo
  labeled-input publish --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bucket != "" {
				c.cfg.Publish.Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				c.cfg.Publish.Prefix = prefix
			}
			if region != "" {
				c.cfg.Publish.Region = region
			}
			if c.cfg.Publish.Bucket == "" {
				return lierrors.New("E041").
					WithSuggestion("Pass --bucket or set publish.bucket in the config")
			}

			b, err := c.bundle(title, attrs)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var client publish.Uploader
			if dryRun {
				client = dryRunUploader{}
			} else {
				client, err = c.s3Client(ctx, endpoint)
				if err != nil {
					return err
				}
			}

			p, err := publish.NewPublisher(client, c.cfg.Publish.Bucket, c.cfg.Publish.Prefix,
				publish.WithLogger(c.logger),
				publish.WithGzip(gzip),
				publish.WithConcurrency(workers))
			if err != nil {
				return err
			}
			keys, err := p.Publish(ctx, b)
			if err != nil {
				return err
			}

			if dryRun {
				c.success("Dry run: would upload %d objects to s3://%s", len(keys), c.cfg.Publish.Bucket)
			} else {
				c.success("Published %d objects to s3://%s", len(keys), c.cfg.Publish.Bucket)
			}
			for _, k := range keys {
				c.info("%s", k)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Bucket name (default from config)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from config)")
	cmd.Flags().StringVar(&region, "region", "", "Bucket region (default from config)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint, for S3-compatible stores")
	cmd.Flags().StringVar(&title, "title", "", "Page title")
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "Element attribute as name=value (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render and list keys without uploading")
	cmd.Flags().BoolVar(&gzip, "gzip", false, "Store objects gzip-compressed")
	cmd.Flags().IntVar(&workers, "concurrency", 4, "Uploads in flight")

	return cmd
}

func (c *cli) s3Client(ctx context.Context, endpoint string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.cfg.Publish.Region))
	if err != nil {
		return nil, lierrors.New("E040").WithDetail("load AWS configuration").Wrap(err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// dryRunUploader accepts every object without sending it.
type dryRunUploader struct{}

func (dryRunUploader) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}
