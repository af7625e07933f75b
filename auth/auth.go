// Package auth provides caller authentication for engine operations.
//
// The engine never trusts a principal argument on its own: every mutating
// operation asks the configured Authenticator to prove the caller is who
// the arguments claim. The default implementation reads the authenticated
// caller from the request context, which suits embedders that resolve
// identity in middleware.
package auth

import (
	"context"
	"errors"

	"github.com/xraph/factoring/types"
)

// ErrNoCaller is returned when no authenticated caller is attached to the
// context.
var ErrNoCaller = errors.New("auth: no authenticated caller in context")

// ErrCallerMismatch is returned when the authenticated caller does not match
// the principal an operation claims to act as.
var ErrCallerMismatch = errors.New("auth: caller does not match principal")

// Authenticator verifies that the caller behind ctx is authorized to act as
// the given principal.
type Authenticator interface {
	Require(ctx context.Context, principal types.Principal) error
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, principal types.Principal) error

func (f AuthenticatorFunc) Require(ctx context.Context, principal types.Principal) error {
	return f(ctx, principal)
}

type callerKey struct{}

// WithCaller returns a context carrying the authenticated caller.
func WithCaller(ctx context.Context, caller types.Principal) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom extracts the authenticated caller from the context, if any.
func CallerFrom(ctx context.Context) (types.Principal, bool) {
	caller, ok := ctx.Value(callerKey{}).(types.Principal)
	return caller, ok && !caller.IsZero()
}

// ContextAuthenticator authenticates against the caller stored in the
// context by WithCaller.
type ContextAuthenticator struct{}

// NewContextAuthenticator creates the context-based authenticator.
func NewContextAuthenticator() *ContextAuthenticator {
	return &ContextAuthenticator{}
}

func (a *ContextAuthenticator) Require(ctx context.Context, principal types.Principal) error {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return ErrNoCaller
	}
	if caller != principal {
		return ErrCallerMismatch
	}
	return nil
}
