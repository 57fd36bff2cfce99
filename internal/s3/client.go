package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/arencloud/sitedeploy/internal/config"
)

// API is the subset of the S3 API used by the deployer.
type API interface {
	CreateBucket(ctx context.Context, params *awss3.CreateBucketInput, optFns ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error)
	PutBucketWebsite(ctx context.Context, params *awss3.PutBucketWebsiteInput, optFns ...func(*awss3.Options)) (*awss3.PutBucketWebsiteOutput, error)
	PutBucketPolicy(ctx context.Context, params *awss3.PutBucketPolicyInput, optFns ...func(*awss3.Options)) (*awss3.PutBucketPolicyOutput, error)
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

var _ API = (*awss3.Client)(nil)

type Client struct{ api API }

// New wraps an existing API implementation.
func New(api API) *Client { return &Client{api: api} }

func normalizeEndpoint(endpoint string, useSSL bool) string {
	if endpoint == "" {
		return ""
	}
	// An explicit scheme wins over the useSSL flag
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		if u, err := url.Parse(endpoint); err == nil {
			return u.Scheme + "://" + u.Host
		}
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func forcePathStyle(provider string) bool {
	// AWS prefers virtual-hosted; everything else defaults to path style
	pt := strings.ToLower(strings.TrimSpace(provider))
	return pt != "aws" && pt != ""
}

// NewFromConfig builds a client from the default AWS credential chain, overridden
// by static keys and a custom endpoint when configured.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	endpoint := normalizeEndpoint(cfg.S3Endpoint, cfg.S3UseSSL)
	pathStyle := forcePathStyle(cfg.S3Provider)
	api := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = pathStyle
	})
	return &Client{api: api}, nil
}

// CreateBucket creates name in region. us-east-1 rejects an explicit location constraint.
func (c *Client) CreateBucket(ctx context.Context, name string, region string) error {
	in := &awss3.CreateBucketInput{Bucket: aws.String(name)}
	if region != "" && region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	_, err := c.api.CreateBucket(ctx, in)
	return err
}

func (c *Client) PutWebsite(ctx context.Context, name, indexDoc, errorDoc string) error {
	_, err := c.api.PutBucketWebsite(ctx, &awss3.PutBucketWebsiteInput{
		Bucket: aws.String(name),
		WebsiteConfiguration: &types.WebsiteConfiguration{
			IndexDocument: &types.IndexDocument{Suffix: aws.String(indexDoc)},
			ErrorDocument: &types.ErrorDocument{Key: aws.String(errorDoc)},
		},
	})
	return err
}

func (c *Client) PutPolicy(ctx context.Context, name, policy string) error {
	_, err := c.api.PutBucketPolicy(ctx, &awss3.PutBucketPolicyInput{
		Bucket: aws.String(name),
		Policy: aws.String(policy),
	})
	return err
}

// Upload streams reader to bucket/key. size < 0 leaves the length to the SDK.
func (c *Client) Upload(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	in := &awss3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}
	_, err := c.api.PutObject(ctx, in)
	return err
}

// IsBucketOwned reports whether err means the bucket already exists and belongs to the caller.
func IsBucketOwned(err error) bool {
	if err == nil {
		return false
	}
	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "BucketAlreadyOwnedByYou"
}

// APIMessage returns the provider's message for err, falling back to err.Error().
func APIMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}
