package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a single line in a user's cart. Lines are identified by
// book name; there is no separate line id.
type CartItem struct {
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Image    string  `bson:"image,omitempty" json:"image,omitempty"`
}

// Cart is the per-user cart document. At most one exists per user.
type Cart struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Items       []CartItem         `bson:"items" json:"items"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CartTotal recomputes a total from line items. Totals are always
// recomputed after a mutation, never adjusted incrementally, and never
// go negative.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	if total < 0 {
		return 0
	}
	return total
}

// EmptyCart is the synthetic cart returned when a user has no cart
// document. A missing cart is not an error.
func EmptyCart(userID primitive.ObjectID) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}, TotalAmount: 0}
}
