package source_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/secureconfig/pkg/source"
)

// MockS3Client is a mock implementation of the S3Client interface.
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func newS3(t *testing.T, client source.S3Client, opts ...source.S3Option) *source.S3 {
	t.Helper()
	opts = append([]source.S3Option{source.WithS3Client(client)}, opts...)
	src, err := source.NewS3(context.Background(), source.S3Config{
		Bucket: "configs",
		Key:    "app/config.ini",
		Region: "us-east-1",
	}, opts...)
	require.NoError(t, err)
	return src
}

func TestNewS3_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  source.S3Config
	}{
		{"missing bucket", source.S3Config{Key: "k", Region: "us-east-1"}},
		{"missing key", source.S3Config{Bucket: "b", Region: "us-east-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := source.NewS3(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, source.ErrInvalidConfig)
		})
	}
}

func TestS3_Read(t *testing.T) {
	t.Parallel()

	client := new(MockS3Client)
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "configs" && aws.ToString(in.Key) == "app/config.ini"
	}), mock.Anything).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader("a = b\n")),
	}, nil)

	src := newS3(t, client)
	data, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a = b\n", string(data))
	assert.Equal(t, "s3://configs/app/config.ini", src.String())
	client.AssertExpectations(t)
}

func TestS3_Write(t *testing.T) {
	t.Parallel()

	client := new(MockS3Client)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		if rs, ok := in.Body.(io.Seeker); ok {
			_, _ = rs.Seek(0, io.SeekStart)
		}
		body, err := io.ReadAll(in.Body)
		return err == nil &&
			aws.ToString(in.Bucket) == "configs" &&
			aws.ToString(in.Key) == "app/config.ini" &&
			aws.ToInt64(in.ContentLength) == 6 &&
			string(body) == "a = b\n"
	}), mock.Anything).Return(&s3.PutObjectOutput{}, nil)

	require.NoError(t, newS3(t, client).Write(context.Background(), []byte("a = b\n")))
	client.AssertExpectations(t)
}

func TestS3_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no such key", &types.NoSuchKey{}, source.ErrNotFound},
		{"no such bucket", &types.NoSuchBucket{}, source.ErrBucketNotFound},
		{"api not found", &smithy.GenericAPIError{Code: "NotFound"}, source.ErrNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, source.ErrAccessDenied},
		{"slow down", &smithy.GenericAPIError{Code: "SlowDown"}, source.ErrServiceUnavailable},
		{"deadline", context.DeadlineExceeded, source.ErrOperationTimeout},
		{"canceled", context.Canceled, source.ErrOperationCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := new(MockS3Client)
			client.On("GetObject", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			client.On("PutObject", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			src := newS3(t, client)

			_, err := src.Read(context.Background())
			assert.ErrorIs(t, err, tt.target)
			assert.ErrorIs(t, err, tt.err)

			err = src.Write(context.Background(), []byte("a"))
			assert.ErrorIs(t, err, tt.target)
		})
	}

	t.Run("unknown error keeps cause", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("boom")
		client := new(MockS3Client)
		client.On("GetObject", mock.Anything, mock.Anything, mock.Anything).Return(nil, cause)

		_, err := newS3(t, client).Read(context.Background())
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, source.ErrNotFound)
	})
}

func TestS3_Timeout(t *testing.T) {
	t.Parallel()

	client := new(MockS3Client)
	client.On("GetObject", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything, mock.Anything).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader("")),
	}, nil)

	_, err := newS3(t, client, source.WithS3Timeout(time.Minute)).Read(context.Background())
	require.NoError(t, err)
	client.AssertExpectations(t)
}
