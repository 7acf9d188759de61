package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is student feedback shown on the reviews page.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	BookName  string             `bson:"bookName,omitempty" json:"bookName,omitempty"`
	Review    string             `bson:"review" json:"review"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ContactMessage is a contact-form submission, kept for the admin inbox.
type ContactMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	BookName  string             `bson:"bookName,omitempty" json:"bookName,omitempty"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
