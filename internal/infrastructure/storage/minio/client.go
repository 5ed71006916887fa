// Package minio stores vocabularies and run artefacts in an S3-compatible
// object store.
package minio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client used here.  GetObject returns an
// io.ReadCloser so tests can stub it.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

type sdkAdapter struct {
	*minio.Client
}

func (a sdkAdapter) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return a.Client.GetObject(ctx, bucketName, objectName, opts)
}

type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
}

type MinIOClient struct {
	api    MinIOAPI
	config *MinIOConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewMinIOClient connects to cfg.Endpoint and creates the bucket if needed.
func NewMinIOClient(cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(cfg)

	sdk, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	c := NewMinIOClientWithAPI(sdkAdapter{sdk}, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	c.logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewMinIOClientWithAPI wraps api without any network round trip.
func NewMinIOClientWithAPI(api MinIOAPI, cfg *MinIOConfig, log logging.Logger) *MinIOClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	applyDefaults(cfg)
	return &MinIOClient{api: api, config: cfg, logger: log.Named("minio")}
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "seqprep-vocabularies"
	}
}

// EnsureBucket creates the configured bucket when it does not exist.
func (c *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket").WithDetail("bucket=" + c.config.Bucket)
	}
	if exists {
		return nil
	}
	if err := c.api.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create bucket").WithDetail("bucket=" + c.config.Bucket)
	}
	c.logger.Info("Created bucket", logging.String("bucket", c.config.Bucket))
	return nil
}

// HealthCheck reports whether the bucket is reachable.
func (c *MinIOClient) HealthCheck(ctx context.Context) error {
	if c.isClosed() {
		return errors.New(errors.ErrCodeServiceUnavailable, "minio client is closed")
	}
	ok, err := c.api.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "minio health check failed")
	}
	if !ok {
		return errors.New(errors.ErrCodeStorageError, "bucket missing").WithDetail("bucket=" + c.config.Bucket)
	}
	return nil
}

func (c *MinIOClient) Bucket() string { return c.config.Bucket }

func (c *MinIOClient) GetClient() MinIOAPI { return c.api }

func (c *MinIOClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *MinIOClient) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
