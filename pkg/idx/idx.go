// Package idx issues the record identifiers used across the directory. IDs are
// ULIDs: lexicographically sortable by creation time, so listing a collection
// by id also lists it by age.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero is the empty placeholder ID.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	mu      sync.Mutex
	once    sync.Once
	entropy *ulid.MonotonicEntropy
)

// New returns an ID stamped with the current UTC time.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns an ID stamped with t. IDs generated within the same
// millisecond stay strictly increasing.
func NewAt(t time.Time) ID {
	once.Do(func() { entropy = ulid.Monotonic(rand.Reader, 0) })

	mu.Lock()
	defer mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}

// Parse validates s as a ULID.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// Time extracts the embedded timestamp, or the zero time for invalid IDs.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
