package ports

import "context"

type bearerKey struct{}

// ContextWithToken attaches the caller's bearer token to ctx so backend
// calls made on its behalf are authenticated.
func ContextWithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, bearerKey{}, token)
}

// TokenFromContext returns the bearer token attached by ContextWithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(bearerKey{}).(string)
	return token
}
