package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Role
		wantErr bool
	}{
		{"", domain.RoleUser, false},
		{"user", domain.RoleUser, false},
		{" Business ", domain.RoleBusiness, false},
		{"ADMIN", domain.RoleAdmin, false},
		{"owner", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range domain.Statuses {
		require.True(t, s.Valid())
	}
	require.False(t, domain.Status("banned").Valid())
}

func TestEmailHelpers(t *testing.T) {
	require.Equal(t, "a@x.com", domain.NormalizeEmail("  A@X.com "))

	for _, ok := range []string{"a@x.com", "first.last@sub.example.org"} {
		require.True(t, domain.ValidEmail(ok), ok)
	}
	for _, bad := range []string{"", "a", "@x.com", "a@", "a@b", "a@@x.com", "a b@x.com"} {
		require.False(t, domain.ValidEmail(bad), bad)
	}
}

func TestDocumentMerge(t *testing.T) {
	base := domain.Document{"bio": "hi", "city": "Sydney"}
	out := base.Merge(domain.Document{"bio": "hello", "city": nil, "pronouns": "they/them"})

	require.Equal(t, domain.Document{"bio": "hello", "city": nil, "pronouns": "they/them"}, out)
	require.Equal(t, "hi", base["bio"], "merge must not mutate the receiver")
}

func TestRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		avg     float64
	}{
		{"none", nil, 0},
		{"single", []int{4}, 4},
		{"rounds to one decimal", []int{5, 4, 4}, 4.3},
		{"rounds half up", []int{1, 2, 2, 2}, 1.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := make([]domain.Review, len(tt.ratings))
			for i, r := range tt.ratings {
				reviews[i].Rating = r
			}
			avg, count := domain.Rating(reviews)
			require.InDelta(t, tt.avg, avg, 1e-9)
			require.Equal(t, len(tt.ratings), count)
		})
	}
}

func TestValidRating(t *testing.T) {
	require.False(t, domain.ValidRating(0))
	require.True(t, domain.ValidRating(1))
	require.True(t, domain.ValidRating(5))
	require.False(t, domain.ValidRating(6))
}

func TestBusinessResponseLive(t *testing.T) {
	var nilResp *domain.BusinessResponse
	require.False(t, nilResp.Live())
	require.True(t, (&domain.BusinessResponse{Message: "thanks"}).Live())
	require.False(t, (&domain.BusinessResponse{Message: domain.DeletedResponseMessage}).Live())
}
