package domain

import (
	"context"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Principal is the opaque caller identity handed out by the identity provider.
// It is forwarded to the backend as a bearer credential.
type Principal string

// Fingerprint returns a short stable digest safe to put in logs and metric keys.
func (p Principal) Fingerprint() string {
	if p == "" {
		return "anonymous"
	}
	sum := blake2b.Sum256([]byte(p))
	return hex.EncodeToString(sum[:8])
}

type principalKey struct{}

// ContextWithPrincipal attaches the caller identity to ctx.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller identity carried by ctx, if any.
func PrincipalFromContext(ctx context.Context) Option[Principal] {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p == "" {
		return None[Principal]()
	}
	return Some(p)
}
