// Package auth resolves the session user of a request.
package auth

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
)

// HeaderUserID carries the session user id.
const HeaderUserID = "X-User-ID"

type userKey struct{}

func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the session user, if there is one.
func UserFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// Middleware stores a well-formed X-User-ID in the operation context. Requests
// without one pass through unauthenticated; the services reject them.
func Middleware(ctx huma.Context, next func(huma.Context)) {
	raw := ctx.Header(HeaderUserID)
	if raw == "" {
		next(ctx)
		return
	}
	id, err := uuid.FromString(raw)
	if err != nil || id == uuid.Nil {
		next(ctx)
		return
	}
	next(huma.WithValue(ctx, userKey{}, id))
}
