package httpx

import (
	"context"

	"github.com/aussiebroadwan/directory/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID    ctxKey = "user_id"
	CtxKeySessionID ctxKey = "session_id"
	CtxKeyClaims    ctxKey = "claims"
)

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeySessionID, c.SID)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// ClaimsFromContext returns the verified session claims, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// UserIDFromContext returns the authenticated user id or "".
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyUserID).(string)
	return v
}
