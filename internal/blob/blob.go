// Package blob is the object-storage gateway for uploaded claim documents.
package blob

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
)

// Gateway uploads raw document bytes to durable storage and issues
// presigned read URLs for the extraction service.
type Gateway interface {
	// Upload writes data to a local scratch path, pushes it to remote
	// storage under the same name (overwriting any existing object, no
	// compression), and returns the storage key plus the local path. The
	// local file persists after the call so later stages can re-read the
	// raw bytes without a remote round trip.
	Upload(ctx context.Context, data []byte, filename string) (key string, localPath string, err error)

	// PresignGet returns a time-limited GET URL for a stored object.
	PresignGet(ctx context.Context, key string) (string, error)
}

// Config holds object storage settings.
type Config struct {
	Endpoint      string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey     string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey     string `yaml:"secret_key" mapstructure:"secret_key"`
	Bucket        string `yaml:"bucket" mapstructure:"bucket"`
	UseSSL        bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	LocalDir      string `yaml:"local_dir" mapstructure:"local_dir"`
	PresignExpiry int    `yaml:"presign_expiry_mins" mapstructure:"presign_expiry_mins"`
}

// MinioGateway implements Gateway against any S3-compatible object store.
type MinioGateway struct {
	client   *minio.Client
	bucket   string
	localDir string
	expiry   time.Duration
}

// NewMinio creates a MinioGateway from config.
func NewMinio(cfg Config) (*MinioGateway, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "blob: create client")
	}

	expiry := time.Duration(cfg.PresignExpiry) * time.Minute
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	return &MinioGateway{
		client:   client,
		bucket:   cfg.Bucket,
		localDir: cfg.LocalDir,
		expiry:   expiry,
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist.
func (g *MinioGateway) EnsureBucket(ctx context.Context) error {
	exists, err := g.client.BucketExists(ctx, g.bucket)
	if err != nil {
		return eris.Wrapf(err, "blob: check bucket %s", g.bucket)
	}
	if exists {
		return nil
	}
	if err := g.client.MakeBucket(ctx, g.bucket, minio.MakeBucketOptions{}); err != nil {
		return eris.Wrapf(err, "blob: make bucket %s", g.bucket)
	}
	return nil
}

func (g *MinioGateway) Upload(ctx context.Context, data []byte, filename string) (string, string, error) {
	if err := os.MkdirAll(g.localDir, 0o755); err != nil {
		return "", "", eris.Wrapf(err, "blob: create local dir %s", g.localDir)
	}

	localPath := filepath.Join(g.localDir, filename)
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", "", eris.Wrapf(err, "blob: write %s", localPath)
	}

	if _, err := g.client.FPutObject(ctx, g.bucket, filename, localPath, minio.PutObjectOptions{}); err != nil {
		return "", "", eris.Wrapf(err, "blob: put %s", filename)
	}

	return filename, localPath, nil
}

func (g *MinioGateway) PresignGet(ctx context.Context, key string) (string, error) {
	u, err := g.client.PresignedGetObject(ctx, g.bucket, key, g.expiry, url.Values{})
	if err != nil {
		return "", eris.Wrapf(err, "blob: presign %s", key)
	}
	return u.String(), nil
}
