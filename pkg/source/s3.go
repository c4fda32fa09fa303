package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client defines the S3 operations used by S3.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config describes the object that holds the config document.
type S3Config struct {
	Bucket         string `env:"SECURECONFIG_S3_BUCKET,required"`
	Key            string `env:"SECURECONFIG_S3_KEY,required"`
	Region         string `env:"SECURECONFIG_S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"SECURECONFIG_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"SECURECONFIG_S3_SECRET_KEY"`
	Endpoint       string `env:"SECURECONFIG_S3_ENDPOINT"`         // Optional: for S3-compatible services
	ForcePathStyle bool   `env:"SECURECONFIG_S3_FORCE_PATH_STYLE"` // For S3-compatible services like MinIO
}

// S3 is a Source backed by a single S3 object. It is safe for concurrent use.
type S3 struct {
	client  S3Client
	bucket  string
	key     string
	timeout time.Duration
}

// S3Option configures NewS3.
type S3Option func(*s3Options)

type s3Options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3.Options)
	timeout         time.Duration
}

// WithS3Client sets a pre-configured S3 client.
// Useful for testing with mocks.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3.Options)) S3Option {
	return func(o *s3Options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// WithS3Timeout bounds every read and write.
// If not set, only the caller's context deadline applies.
func WithS3Timeout(timeout time.Duration) S3Option {
	return func(o *s3Options) {
		o.timeout = timeout
	}
}

// NewS3 creates an S3 source.
func NewS3(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{}
	for _, opt := range opts {
		opt(options)
	}

	client := options.s3Client
	if client == nil {
		if cfg.Region == "" {
			return nil, ErrInvalidConfig
		}

		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}
		if options.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(options.httpClient))
		}
		awsOptions = append(awsOptions, options.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, errors.Join(ErrFailedToLoadConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle

			for _, opt := range options.s3ClientOptions {
				opt(o)
			}
		})
	}

	return &S3{
		client:  client,
		bucket:  cfg.Bucket,
		key:     cfg.Key,
		timeout: options.timeout,
	}, nil
}

// String implements fmt.Stringer.
func (s *S3) String() string {
	return "s3://" + s.bucket + "/" + s.key
}

func (s *S3) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return ctx, func() {}
}

// Read downloads the object.
func (s *S3) Read(ctx context.Context) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, classifyS3Error(err, "get object")
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, classifyS3Error(err, "read object")
	}
	return data, nil
}

// Write uploads data, replacing the object.
func (s *S3) Write(ctx context.Context, data []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return classifyS3Error(err, "put object")
	}
	return nil
}

// classifyS3Error converts S3 errors to package errors, keeping the cause.
func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation), err)
	}
	if errors.Is(err, context.Canceled) {
		return errors.Join(fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation), err)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return errors.Join(ErrNotFound, err)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return errors.Join(ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "NoSuchKey", "NotFound":
			return errors.Join(ErrNotFound, err)
		case "NoSuchBucket":
			return errors.Join(ErrBucketNotFound, err)
		case "AccessDenied":
			return errors.Join(fmt.Errorf("%w: %s operation", ErrAccessDenied, operation), err)
		case "SlowDown", "ServiceUnavailable":
			return errors.Join(fmt.Errorf("%w: %s operation", ErrServiceUnavailable, operation), err)
		default:
			return fmt.Errorf("%s operation failed (code: %s): %w", operation, code, err)
		}
	}

	return fmt.Errorf("%s operation failed: %w", operation, err)
}
