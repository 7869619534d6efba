package usecase

import (
	"crypto/rand"
	"encoding/hex"
)

// Notifier sends transactional messages to users. Calls are fire-and-
// forget: implementations must log failures themselves and never block a
// request on delivery.
type Notifier interface {
	SignupSuccess(email, name string)
	PasswordUpdated(email string)
	VerifyEmail(email, key string)
	VerifySuccess(email string)
	PasswordReset(email, key string)
	ResetSuccess(email string)
}

// generateOneTimeKey generates an opaque random key value.
func generateOneTimeKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
