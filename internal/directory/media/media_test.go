package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestCheckContentType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"image/jpeg", "image/jpeg", false},
		{"IMAGE/PNG", "image/png", false},
		{"image/webp; charset=binary", "image/webp", false},
		{"image/gif", "image/gif", false},
		{"image/svg+xml", "", true},
		{"text/plain", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CheckContentType(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPrepare(t *testing.T) {
	t.Run("sniffs missing content type", func(t *testing.T) {
		u, err := prepare("", bytes.NewReader(pngHeader), -1, 1024)
		require.NoError(t, err)
		require.Equal(t, "image/png", u.info.ContentType)
		require.Equal(t, int64(len(pngHeader)), u.info.Size)
		require.True(t, ValidRef(u.info.Ref))
	})

	t.Run("rejects declared size over limit", func(t *testing.T) {
		_, err := prepare("image/png", bytes.NewReader(pngHeader), 2048, 1024)
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("rejects streamed data over limit", func(t *testing.T) {
		_, err := prepare("image/png", strings.NewReader(strings.Repeat("x", 20)), -1, 10)
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("rejects empty upload", func(t *testing.T) {
		_, err := prepare("image/png", bytes.NewReader(nil), 0, 10)
		require.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("rejects sniffed text", func(t *testing.T) {
		_, err := prepare("", strings.NewReader("hello world"), -1, 1024)
		require.ErrorIs(t, err, ErrUnsupportedType)
	})
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	ref, err := m.Put(ctx, "image/png", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)

	rc, info, err := m.Get(ctx, ref)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, pngHeader, data)
	require.Equal(t, "image/png", info.ContentType)

	stat, err := m.Stat(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, info, stat)

	require.NoError(t, m.Delete(ctx, ref))
	require.ErrorIs(t, m.Delete(ctx, ref), ErrNotFound)
	_, _, err = m.Get(ctx, ref)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.Stat(ctx, ref)
	require.ErrorIs(t, err, ErrNotFound)
}

type fakeObject struct {
	data []byte
	ct   string
}

// fakeMinio implements minioAPI against a map.
type fakeMinio struct {
	bucketExists bool
	bucketErr    error
	madeBucket   bool
	putErr       error
	objects      map[string]fakeObject
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{bucketExists: true, objects: map[string]fakeObject{}}
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketErr
}

func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minio.MakeBucketOptions) error {
	f.madeBucket = true
	return nil
}

func (f *fakeMinio) PutObject(_ context.Context, _ string, name string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[name] = fakeObject{data: data, ct: opts.ContentType}
	return minio.UploadInfo{Key: name, Size: int64(len(data))}, nil
}

func (f *fakeMinio) GetObject(_ context.Context, _ string, name string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.objects[name].data)), nil
}

func (f *fakeMinio) RemoveObject(_ context.Context, _ string, name string, _ minio.RemoveObjectOptions) error {
	delete(f.objects, name)
	return nil
}

func (f *fakeMinio) StatObject(_ context.Context, _ string, name string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	o, ok := f.objects[name]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	}
	return minio.ObjectInfo{Key: name, Size: int64(len(o.data)), ContentType: o.ct}, nil
}

func TestMinio_EnsuresBucket(t *testing.T) {
	ctx := context.Background()

	api := newFakeMinio()
	api.bucketExists = false
	_, err := newMinioWithAPI(ctx, api, "photos", 0)
	require.NoError(t, err)
	require.True(t, api.madeBucket)

	api = newFakeMinio()
	api.bucketErr = errors.New("boom")
	_, err = newMinioWithAPI(ctx, api, "photos", 0)
	require.ErrorContains(t, err, "check bucket")
}

func TestMinio_RoundTrip(t *testing.T) {
	ctx := context.Background()
	api := newFakeMinio()
	m, err := newMinioWithAPI(ctx, api, "photos", 1024)
	require.NoError(t, err)
	require.NoError(t, m.Ping(ctx))

	ref, err := m.Put(ctx, "", bytes.NewReader(pngHeader), -1)
	require.NoError(t, err)
	require.Equal(t, "image/png", api.objects[ref].ct)

	rc, info, err := m.Get(ctx, ref)
	require.NoError(t, err)
	defer rc.Close()
	require.Equal(t, int64(len(pngHeader)), info.Size)
	require.Equal(t, "image/png", info.ContentType)

	stat, err := m.Stat(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, info, stat)

	require.NoError(t, m.Delete(ctx, ref))
	require.ErrorIs(t, m.Delete(ctx, ref), ErrNotFound)
	_, _, err = m.Get(ctx, ref)
	require.ErrorIs(t, err, ErrNotFound)

	api.putErr = errors.New("offline")
	_, err = m.Put(ctx, "image/png", bytes.NewReader(pngHeader), -1)
	require.ErrorContains(t, err, "offline")
}

func TestStoreImplementations(t *testing.T) {
	var _ Store = (*Memory)(nil)
	var _ Store = (*Minio)(nil)
}
