package middlewarectx

import (
	"context"

	"github.com/google/uuid"
)

// Key is the type of request context keys set by this package.
type Key string

// UserID holds the caller's uuid.UUID. Role decisions read the profile, not the token.
const UserID Key = "user_id"

// UserIDFrom returns the authenticated caller.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithUserID stores the caller in ctx.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserID, id)
}
