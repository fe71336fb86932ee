package auth

import "context"

type ctxKey string

const (
	userContextKey   ctxKey = "taskreward.auth.user"
	claimsContextKey ctxKey = "taskreward.auth.claims"
)

func withUserContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

func withClaimsContext(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, c)
}

func UserFromContext(ctx context.Context) (User, bool) {
	v := ctx.Value(userContextKey)
	u, ok := v.(User)
	return u, ok
}

// ContextWithUser is used by tests and internal callers that authenticate
// outside RequireBearer.
func ContextWithUser(ctx context.Context, u User) context.Context {
	return withUserContext(ctx, u)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	v := ctx.Value(claimsContextKey)
	c, ok := v.(*Claims)
	return c, ok
}
