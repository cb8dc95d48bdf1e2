/*
Package directorysdk is the Go client for the business directory API and the
home of the request and response types its handlers exchange.

# Client vs Session

A Client talks to public endpoints (health, discovery, sign-up and sign-in).
Signing in returns a Session bound to a bearer token:

	client := directorysdk.NewClient("http://localhost:8080")

	sess, err := client.SignIn(ctx, "alex@example.com", "Welcome123!")
	if err != nil {
		return err
	}
	defer sess.SignOut(ctx)

	review, err := sess.AddReview(ctx, businessID, directorysdk.ReviewRequest{
		Rating:  5,
		Comment: "Step-free entrance and friendly staff",
	})

# Errors

Every non-2xx response is returned as an *APIError carrying the error kind
(for example "permission_denied" or "invalid_rating"). Use errors.As or the
IsKind helper to branch on it:

	if directorysdk.IsKind(err, directorysdk.ErrorCodePermissionDenied) {
		// not the owner
	}
*/
package directorysdk
