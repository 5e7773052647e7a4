package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered identity stored in the users collection.
// Password holds the bcrypt hash and is only populated when a lookup
// explicitly asks for the credential.
type User struct {
	ID        primitive.ObjectID `json:"id"              bson:"_id,omitempty"`
	Username  string             `json:"username"        bson:"username"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`
	Password  string             `json:"-"               bson:"password,omitempty"` // never serialize
	CreatedAt time.Time          `json:"createdAt"       bson:"created_at"`
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
