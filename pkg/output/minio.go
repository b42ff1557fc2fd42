package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
	"github.com/devicelab-dev/katalon-recorder/pkg/logger"
)

const groovyContentType = "text/x-groovy; charset=utf-8"

// ObjectStoreConfig configures uploads to an S3-compatible bucket.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Validate checks that the config can be used to connect.
func (c ObjectStoreConfig) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.New("bucket is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}

// objectStore is the subset of *minio.Client used for uploads.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIOWriter uploads scripts as <prefix>/<testName>.groovy.
type MinIOWriter struct {
	client objectStore
	cfg    ObjectStoreConfig

	mu      sync.Mutex
	ensured bool
}

// NewMinIOWriter creates an uploader. The bucket is created on first write
// when it does not exist.
func NewMinIOWriter(cfg ObjectStoreConfig) (*MinIOWriter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("invalid object store config").WithCause(err)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("failed to create object store client").WithCause(err)
	}
	return &MinIOWriter{client: client, cfg: cfg}, nil
}

// ObjectKey returns the object name for a test.
func (w *MinIOWriter) ObjectKey(testName string) string {
	prefix := strings.Trim(w.cfg.Prefix, "/")
	if prefix == "" {
		return FileName(testName)
	}
	return path.Join(prefix, FileName(testName))
}

// Write uploads the script.
func (w *MinIOWriter) Write(ctx context.Context, testName, content string) Result {
	key := w.ObjectKey(testName)
	location := "s3://" + w.cfg.Bucket + "/" + key

	if err := w.ensureBucket(ctx); err != nil {
		return Result{Location: location, Err: core.ErrOutputFailed.WithMessage("failed to prepare bucket " + w.cfg.Bucket).WithCause(err)}
	}

	opts := minio.PutObjectOptions{ContentType: groovyContentType}
	if _, err := w.client.PutObject(ctx, w.cfg.Bucket, key, strings.NewReader(content), int64(len(content)), opts); err != nil {
		return Result{Location: location, Err: core.ErrOutputFailed.WithMessage("failed to upload " + location).WithCause(err)}
	}
	logger.Info("uploaded %s (%d bytes)", location, len(content))
	return Result{Location: location}
}

func (w *MinIOWriter) ensureBucket(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ensured {
		return nil
	}
	exists, err := w.client.BucketExists(ctx, w.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		logger.Info("creating bucket %s", w.cfg.Bucket)
		if err := w.client.MakeBucket(ctx, w.cfg.Bucket, minio.MakeBucketOptions{Region: w.cfg.Region}); err != nil {
			return err
		}
	}
	w.ensured = true
	return nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
