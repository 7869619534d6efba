package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Purposes a one-time key can be issued for.
const (
	KeyPurposeVerifyEmail   = "verify_email"
	KeyPurposePasswordReset = "password_reset"
)

// OneTimeKey is a short-lived, single-use capability token. The key value
// is generated server-side and never client-supplied. A TTL index on
// created_at expires unused keys automatically, and a unique index on
// (user_id, purpose) keeps at most one live key per user per purpose.
type OneTimeKey struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Key       string        `bson:"key"`
	UserID    bson.ObjectID `bson:"user_id"`
	Purpose   string        `bson:"purpose"`
	CreatedAt time.Time     `bson:"created_at"`
}
