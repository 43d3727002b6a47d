package catalogapi

import "context"

// TokenProvider fournit le bearer token envoyé à l'API catalogue. Les tokens
// ne sont jamais rafraîchis ici.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken renvoie toujours le même token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

type tokenKey struct{}

// WithToken attache le token de l'appelant à ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom renvoie le token attaché par WithToken.
func TokenFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey{}).(string)
	return t, ok && t != ""
}

// ForwardedToken utilise le token de l'admin dont la requête est en cours,
// et Fallback s'il n'y en a pas (tâches de fond).
type ForwardedToken struct {
	Fallback TokenProvider
}

func (f ForwardedToken) Token(ctx context.Context) (string, error) {
	if t, ok := TokenFrom(ctx); ok {
		return t, nil
	}
	if f.Fallback != nil {
		return f.Fallback.Token(ctx)
	}
	return "", nil
}
