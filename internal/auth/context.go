package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxDisplayName
)

func WithIdentity(ctx context.Context, userID, displayName string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxDisplayName, displayName)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

// DisplayName is best-effort; tokens issued before a rename carry the old name.
func DisplayName(ctx context.Context) string {
	v := ctx.Value(ctxDisplayName)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
