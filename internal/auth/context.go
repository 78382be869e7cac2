package auth

import "context"

// Principal is the authenticated identity performing the current request.
type Principal struct {
	ID       string
	Username string
}

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal stores the acting principal on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil || p.ID == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the acting principal, reporting whether
// one is present. Anonymous requests carry no principal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.ID != ""
}
