package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/directory/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.False(t, id.IsZero())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-ulid", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, "input %q", s)
	}
}

func TestMonotonicWithinMillisecond(t *testing.T) {
	at := time.Unix(1700000000, 0).UTC()
	prev := idx.NewAt(at)
	for range 50 {
		next := idx.NewAt(at)
		require.Less(t, prev.String(), next.String())
		prev = next
	}
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	require.WithinDuration(t, tm, idx.NewAt(tm).Time(), time.Millisecond)
	require.True(t, idx.ID("bogus").Time().IsZero())
}
