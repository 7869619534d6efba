package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ProviderLink stores the external identity a user linked from an OAuth
// provider (Google, Facebook).
type ProviderLink struct {
	ProviderID    string `bson:"provider_id"`
	ProviderEmail string `bson:"provider_email"`
}

// User represents a user in the authentication system. Email and password
// are optional because an account may exist solely through a linked
// provider; at least one sign-in method (email+password, Google, Facebook)
// must remain attached at all times.
type User struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	Name             string        `bson:"name"`
	Email            *string       `bson:"email,omitempty"`
	PasswordHash     *string       `bson:"password_hash,omitempty"`
	RefreshTokenHash *string       `bson:"refresh_token_hash"`
	IsVerify         bool          `bson:"is_verify"`
	Google           *ProviderLink `bson:"google,omitempty"`
	Facebook         *ProviderLink `bson:"facebook,omitempty"`
	CreatedAt        time.Time     `bson:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at"`
}

// AuthMethodCount reports how many sign-in methods are attached.
// Email counts only when a password is set alongside it.
func (u *User) AuthMethodCount() int {
	count := 0
	if u.Email != nil && u.PasswordHash != nil {
		count++
	}
	if u.Google != nil {
		count++
	}
	if u.Facebook != nil {
		count++
	}
	return count
}
