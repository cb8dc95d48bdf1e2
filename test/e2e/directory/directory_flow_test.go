package directory_test

import (
	"testing"

	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/stretchr/testify/require"
)

// TestSeededDirectoryIsPublic verifies anonymous reads of the sample data.
func TestSeededDirectoryIsPublic(t *testing.T) {
	baseURL, cleanup := setupDirectoryContainer(t, relaxedLimits)
	defer cleanup()

	client := directorysdk.NewClient(baseURL)

	businesses, err := client.ListBusinesses(t.Context(), directorysdk.BusinessQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, businesses)

	b, err := client.GetBusiness(t.Context(), businesses[0].ID)
	require.NoError(t, err)
	require.Equal(t, businesses[0].Name, b.Name)

	_, err = client.ListBusinessReviews(t.Context(), b.ID)
	require.NoError(t, err)

	_, err = client.GetBusiness(t.Context(), "missing")
	assertKind(t, err, directorysdk.ErrorCodeNotFound)
}

// TestReviewAndRespond walks a review through its owner response and
// tombstone.
func TestReviewAndRespond(t *testing.T) {
	baseURL, cleanup := setupDirectoryContainer(t, relaxedLimits)
	defer cleanup()

	client := directorysdk.NewClient(baseURL)
	ctx := t.Context()

	owner := signIn(t, client, ownerEmail)
	alex := signIn(t, client, alexEmail)

	mine, err := owner.MyBusinesses(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, mine)
	target := mine[0]

	review, err := alex.AddReview(ctx, target.ID, directorysdk.ReviewRequest{Rating: 4, Comment: "Ramp at the side door"})
	require.NoError(t, err)

	after, err := client.GetBusiness(ctx, target.ID)
	require.NoError(t, err)
	require.Equal(t, target.ReviewCount+1, after.ReviewCount)

	_, err = alex.RespondToReview(ctx, review.ID, "not mine to answer")
	assertKind(t, err, directorysdk.ErrorCodePermissionDenied)

	responded, err := owner.RespondToReview(ctx, review.ID, "Thanks, we added signage too")
	require.NoError(t, err)
	require.NotNil(t, responded.Response)

	require.NoError(t, owner.DeleteResponse(ctx, review.ID))

	reviews, err := client.ListBusinessReviews(ctx, target.ID)
	require.NoError(t, err)
	for _, r := range reviews {
		if r.ID == review.ID {
			require.NotNil(t, r.Response)
			require.Equal(t, "[deleted]", r.Response.Message)
		}
	}
}

// TestAdminGate verifies debug and admin routes reject non-admins.
func TestAdminGate(t *testing.T) {
	baseURL, cleanup := setupDirectoryContainer(t, relaxedLimits)
	defer cleanup()

	client := directorysdk.NewClient(baseURL)
	ctx := t.Context()

	alex := signIn(t, client, alexEmail)
	_, err := alex.SystemInfo(ctx)
	assertKind(t, err, directorysdk.ErrorCodePermissionDenied)
	_, err = alex.ListUsers(ctx)
	assertKind(t, err, directorysdk.ErrorCodePermissionDenied)

	admin := signIn(t, client, adminEmail)
	info, err := admin.SystemInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "sqlite", info.Driver)

	users, err := admin.ListUsers(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(users), 3)

	result, err := admin.ExecuteQuery(ctx, "SELECT * FROM businesses")
	require.NoError(t, err)
	require.NotEmpty(t, result.Rows)

	_, err = admin.ExecuteQuery(ctx, "DROP TABLE users")
	assertKind(t, err, directorysdk.ErrorCodeUnsupportedQuery)
}

// TestSignOutRevokesToken verifies a signed-out token is refused.
func TestSignOutRevokesToken(t *testing.T) {
	baseURL, cleanup := setupDirectoryContainer(t, relaxedLimits)
	defer cleanup()

	client := directorysdk.NewClient(baseURL)
	ctx := t.Context()

	alex := signIn(t, client, alexEmail)
	token := alex.Token()
	require.NoError(t, alex.SignOut(ctx))

	_, err := client.NewSessionFromToken(token).Me(ctx)
	assertKind(t, err, directorysdk.ErrorCodeInvalidToken)
}
