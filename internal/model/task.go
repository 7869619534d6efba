package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Task is a user-owned todo item.
type Task struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Title     string        `bson:"title"`
	Done      bool          `bson:"done"`
	DueAt     *time.Time    `bson:"due_at,omitempty"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
