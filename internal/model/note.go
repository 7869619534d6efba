package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Note is a user-owned free-form note.
type Note struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Title     string        `bson:"title"`
	Content   string        `bson:"content"`
	Pinned    bool          `bson:"pinned"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
