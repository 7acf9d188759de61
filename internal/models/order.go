package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status values are stored as the display strings the storefront renders.
const (
	BookTypeSoftCopy = "Soft Copy"
	BookTypeHardCopy = "Hard Copy"

	OrderStatusPending    = "Pending"
	OrderStatusConfirmed  = "Confirmed"
	OrderStatusDispatched = "Dispatched"
	OrderStatusOnTheWay   = "On The Way"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"

	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"

	RefundNotApplicable = "Not Applicable"
	RefundInitiated     = "Initiated"
	RefundCompleted     = "Completed"
)

// CustomerDetails captures the delivery contact for an order. Every
// field is required at order creation.
type CustomerDetails struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Email   string `bson:"email" json:"email"`
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Pincode string `bson:"pincode" json:"pincode"`
}

// Artifact is a digital download granted when a soft-copy order is
// confirmed as paid.
type Artifact struct {
	Name    string `bson:"name" json:"name"`
	FileRef string `bson:"fileRef" json:"fileRef"`
	GrantID string `bson:"grantId" json:"grantId"`
	URL     string `bson:"url" json:"url"`
}

// Order is the persisted snapshot of a checkout intent. Items and
// totalAmount are frozen copies of the cart at creation time; later
// cart mutations never change an existing order. Orders are mutated in
// place for status fields only and never deleted by the transaction
// flow.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	CustomerDetails CustomerDetails    `bson:"customerDetails" json:"customerDetails"`
	Items           []CartItem         `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	BookType        string             `bson:"bookType" json:"bookType"`
	OrderStatus     string             `bson:"orderStatus" json:"orderStatus"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	RefundStatus    string             `bson:"refundStatus" json:"refundStatus"`
	Artifacts       []Artifact         `bson:"artifacts,omitempty" json:"artifacts,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
