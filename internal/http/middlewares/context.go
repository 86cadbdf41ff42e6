package middlewares

import (
	"context"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyUser
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, rid)
}

// GetRequestID returns the request id injected by WithRequestID, or "".
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKeyRequestID).(string)
	return rid
}

func setUser(ctx context.Context, u *repository.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// GetUser returns the authenticated user injected by WithAuth, or nil.
func GetUser(ctx context.Context) *repository.User {
	u, _ := ctx.Value(ctxKeyUser).(*repository.User)
	return u
}
