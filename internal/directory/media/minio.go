package media

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// minioAPI is the subset of *minio.Client the store uses.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

type minioClient struct{ c *minio.Client }

func (w minioClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return w.c.BucketExists(ctx, bucket)
}

func (w minioClient) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucket, opts)
}

func (w minioClient) PutObject(ctx context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucket, name, r, size, opts)
}

func (w minioClient) GetObject(ctx context.Context, bucket, name string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucket, name, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (w minioClient) RemoveObject(ctx context.Context, bucket, name string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucket, name, opts)
}

func (w minioClient) StatObject(ctx context.Context, bucket, name string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return w.c.StatObject(ctx, bucket, name, opts)
}

// Minio keeps photos in an S3-compatible bucket, one object per reference.
type Minio struct {
	api      minioAPI
	bucket   string
	maxBytes int64
}

// NewMinio wraps client and creates bucket when it does not exist yet.
func NewMinio(ctx context.Context, client *minio.Client, bucket string, maxBytes int64) (*Minio, error) {
	return newMinioWithAPI(ctx, minioClient{c: client}, bucket, maxBytes)
}

func newMinioWithAPI(ctx context.Context, api minioAPI, bucket string, maxBytes int64) (*Minio, error) {
	m := &Minio{api: api, bucket: bucket, maxBytes: maxBytes}

	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("media: check bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("media: create bucket %q: %w", bucket, err)
		}
	}
	return m, nil
}

func (m *Minio) Put(ctx context.Context, contentType string, r io.Reader, size int64) (string, error) {
	u, err := prepare(contentType, r, size, m.maxBytes)
	if err != nil {
		return "", err
	}
	_, err = m.api.PutObject(ctx, m.bucket, u.info.Ref, u.reader(), u.info.Size, minio.PutObjectOptions{
		ContentType: u.info.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("media: upload: %w", err)
	}
	return u.info.Ref, nil
}

func (m *Minio) Get(ctx context.Context, ref string) (io.ReadCloser, Info, error) {
	info, err := m.Stat(ctx, ref)
	if err != nil {
		return nil, Info{}, err
	}
	rc, err := m.api.GetObject(ctx, m.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, Info{}, fmt.Errorf("media: download: %w", err)
	}
	return rc, info, nil
}

func (m *Minio) Delete(ctx context.Context, ref string) error {
	if _, err := m.Stat(ctx, ref); err != nil {
		return err
	}
	if err := m.api.RemoveObject(ctx, m.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("media: delete: %w", err)
	}
	return nil
}

func (m *Minio) Stat(ctx context.Context, ref string) (Info, error) {
	oi, err := m.api.StatObject(ctx, m.bucket, ref, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return Info{}, ErrNotFound
		}
		return Info{}, fmt.Errorf("media: stat: %w", err)
	}
	return Info{
		Ref:         ref,
		ContentType: oi.ContentType,
		Size:        oi.Size,
		CreatedAt:   oi.LastModified,
	}, nil
}

// Ping checks that the bucket is reachable.
func (m *Minio) Ping(ctx context.Context) error {
	_, err := m.api.BucketExists(ctx, m.bucket)
	return err
}
