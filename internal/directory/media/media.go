// Package media stores the photos attached to businesses and reviews.
// Records only keep the opaque reference returned by Put.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/directory/pkg/idx"
)

// DefaultMaxBytes caps a single upload when no limit is configured.
const DefaultMaxBytes = 5 << 20

var (
	ErrNotFound        = errors.New("media: not found")
	ErrUnsupportedType = errors.New("unsupported_media_type")
	ErrTooLarge        = errors.New("media: upload too large")
)

// AllowedTypes lists the accepted photo content types.
var AllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Info describes a stored photo.
type Info struct {
	Ref         string    `json:"ref"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Store interface {
	// Put stores a photo and returns its reference. size may be -1 when
	// unknown. An empty contentType is sniffed from the data.
	Put(ctx context.Context, contentType string, r io.Reader, size int64) (string, error)

	// Get opens a stored photo. The caller closes the reader.
	Get(ctx context.Context, ref string) (io.ReadCloser, Info, error)

	// Stat describes a stored photo without opening it.
	Stat(ctx context.Context, ref string) (Info, error)

	Delete(ctx context.Context, ref string) error
}

// ValidRef reports whether ref has the shape of a reference issued by Put.
func ValidRef(ref string) bool {
	_, err := idx.Parse(ref)
	return err == nil
}

// upload is a validated, fully buffered photo.
type upload struct {
	info Info
	data []byte
}

func (u upload) reader() io.Reader { return bytes.NewReader(u.data) }

// prepare reads at most maxBytes from r, checks the content type and
// assigns a new reference.
func prepare(contentType string, r io.Reader, size, maxBytes int64) (upload, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if size > maxBytes {
		return upload{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, size, maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return upload{}, fmt.Errorf("media: read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return upload{}, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, maxBytes)
	}
	if len(data) == 0 {
		return upload{}, fmt.Errorf("%w: empty upload", ErrUnsupportedType)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(data)
	}
	ct, err := CheckContentType(contentType)
	if err != nil {
		return upload{}, err
	}

	now := time.Now().UTC()
	return upload{
		info: Info{
			Ref:         idx.NewAt(now).String(),
			ContentType: ct,
			Size:        int64(len(data)),
			CreatedAt:   now,
		},
		data: data,
	}, nil
}

// CheckContentType normalizes a Content-Type header value and rejects
// anything that is not an accepted photo type.
func CheckContentType(contentType string) (string, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	for _, allowed := range AllowedTypes {
		if mt == allowed {
			return mt, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt)
}
