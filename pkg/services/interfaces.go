package services

import "context"

// TargetResolver derives the opaque target identifier for a submitted URL.
type TargetResolver interface {
	ResolveTarget(ctx context.Context, url string) (string, error)
}

// TokenResolver exchanges a credential string for an authorization token.
type TokenResolver interface {
	ResolveToken(ctx context.Context, credential string) (string, error)
}

// Action performs one attempt of the remote repeat action.
type Action interface {
	Perform(ctx context.Context, targetID, token string) error
}
