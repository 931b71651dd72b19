// Package auth defines the caller identity verification collaborator.
//
// The gateway never verifies signatures itself; it asks an injected Verifier
// to prove that the actual caller controls a claimed address, and aborts the
// whole operation when it cannot. Verification is a synchronous precondition
// evaluated before any state mutation and is never cached across calls.
package auth

import (
	"context"
	"fmt"

	"github.com/xraph/paygate/types"
)

// Verifier proves that the actual caller controls the claimed address.
type Verifier interface {
	// RequireAuth returns nil only if the caller behind ctx has proven
	// control of addr. Any error aborts the calling operation.
	RequireAuth(ctx context.Context, addr types.Address) error
}

// VerifierFunc is an adapter to use a plain function as a Verifier.
type VerifierFunc func(ctx context.Context, addr types.Address) error

// RequireAuth implements Verifier.
func (f VerifierFunc) RequireAuth(ctx context.Context, addr types.Address) error {
	return f(ctx, addr)
}

type callerKey struct{}

// WithCaller returns a context carrying addr as the proven caller. The
// surrounding transport layer (which did the actual signature or session
// verification) is expected to set this before invoking the gateway.
func WithCaller(ctx context.Context, addr types.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, addr)
}

// CallerFrom extracts the proven caller from the context, if any.
func CallerFrom(ctx context.Context) (types.Address, bool) {
	addr, ok := ctx.Value(callerKey{}).(types.Address)
	return addr, ok && !addr.IsZero()
}

// ContextVerifier is a Verifier that trusts the caller recorded in the
// context via WithCaller. It is the default verifier: it pushes the actual
// proof of identity out to whatever authenticated the request.
type ContextVerifier struct{}

// RequireAuth implements Verifier.
func (ContextVerifier) RequireAuth(ctx context.Context, addr types.Address) error {
	if addr.IsZero() {
		return fmt.Errorf("auth: zero address cannot authenticate")
	}
	caller, ok := CallerFrom(ctx)
	if !ok {
		return fmt.Errorf("auth: no authenticated caller in context")
	}
	if !caller.Equal(addr) {
		return fmt.Errorf("auth: caller %s cannot authenticate as %s", caller, addr)
	}
	return nil
}
