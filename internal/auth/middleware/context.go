package auth

import (
	"context"

	"github.com/mind-engage/learnpath/internal/learning"
)

type ctxKey string

const (
	ctxKeySub  ctxKey = "sub"
	ctxKeyUser ctxKey = "user"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithUser(ctx context.Context, u learning.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// UserFromContext returns the user loaded by AttachUser.
func UserFromContext(ctx context.Context) (learning.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(learning.User)
	return u, ok
}
