// Package objectstore sube copias de seguridad a un almacenamiento compatible con S3 (MinIO).
package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store cliente MinIO atado a un bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// New crea el cliente. Sin endpoint o bucket configurados devuelve nil, nil: las copias quedan solo en disco.
func New(cfg config.BackupConfig) (*Store, error) {
	if !cfg.UploadEnabled() {
		return nil, nil
	}
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	return &Store{client: client, bucket: cfg.S3Bucket}, nil
}

// EnsureBucket crea el bucket si no existe.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio: comprobar bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("minio: crear bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload sube el objeto con la clave indicada.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("minio: subir %s: %w", key, err)
	}
	return nil
}

// Bucket nombre del bucket destino.
func (s *Store) Bucket() string { return s.bucket }
