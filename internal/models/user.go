package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a storefront account. Signup accepts either an email or a
// phone number, so both fields are optional but one is always set.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash   string             `bson:"password" json:"-"`
	Role           string             `bson:"role,omitempty" json:"role,omitempty"`
	ResetOTP       string             `bson:"resetOTP,omitempty" json:"-"`
	ResetOTPExpiry time.Time          `bson:"resetOTPExpiry,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
