package provider

import (
	"context"
	"errors"
)

// Provider names as stored on the user document.
const (
	Google   = "google"
	Facebook = "facebook"
)

// ErrVerificationFailed is the single outward failure of a Verifier.
// Transport errors, provider rejections, and malformed responses all
// collapse into it; the underlying cause is logged at the adapter.
var ErrVerificationFailed = errors.New("provider verification failed")

// Identity is the stable account tuple a provider returns for a verified
// access token.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// Verifier exchanges a caller-supplied provider access token for the
// provider's identity. Implementations revoke the token at the provider
// after a successful exchange, so verification is not replayable.
type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*Identity, error)
}
