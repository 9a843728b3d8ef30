package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/s3utils"
)

// Options configures the S3-compatible client. Empty keys fall back to the AWS credential chain.
type Options struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Bucket     string
	PublicBase string
}

// MinioStorage implements Storage against AWS S3, MinIO or any S3-compatible service.
type MinioStorage struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinioStorage builds the client without touching the network; call CheckBucket to verify access.
func NewMinioStorage(opts Options) (*MinioStorage, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket name is empty")
	}
	endpoint, secure, err := normaliseEndpoint(opts.Endpoint, opts.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("storage endpoint: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  newCredentials(opts.AccessKey, opts.SecretKey),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStorage{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: strings.TrimRight(opts.PublicBase, "/"),
	}, nil
}

func newCredentials(accessKey, secretKey string) *credentials.Credentials {
	if accessKey != "" && secretKey != "" {
		return credentials.NewStaticV4(accessKey, secretKey, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

// CheckBucket fails when the configured bucket is missing or unreachable.
func (s *MinioStorage) CheckBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket does not exist: %s", s.bucket)
	}
	return nil
}

func (s *MinioStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// PublicURL uses S3_PUBLIC_BASE_URL when set, virtual-host style for AWS endpoints and
// path style for everything else.
func (s *MinioStorage) PublicURL(key string) string {
	return publicURL(*s.client.EndpointURL(), s.bucket, key, s.publicBase)
}

func publicURL(endpoint url.URL, bucket, key, publicBase string) string {
	encodedKey := s3utils.EncodePath(key)
	if publicBase != "" {
		return publicBase + "/" + encodedKey
	}
	if s3utils.IsAmazonEndpoint(endpoint) {
		return fmt.Sprintf("%s://%s.%s/%s", endpoint.Scheme, bucket, endpoint.Host, encodedKey)
	}
	return fmt.Sprintf("%s://%s/%s/%s", endpoint.Scheme, endpoint.Host, bucket, encodedKey)
}

// normaliseEndpoint accepts "host:port" or a URL with scheme; an explicit scheme overrides useSSL.
func normaliseEndpoint(raw string, useSSL bool) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, useSSL, nil
}
