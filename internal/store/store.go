// Package store holds the persistence interfaces the transaction flow
// depends on, plus their MongoDB implementations.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookverse/internal/models"
)

// CartStore persists per-user carts. Get returns domain.ErrNotFound
// when the user has no cart document.
type CartStore interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Upsert(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

// OrderStore persists orders. The Mark* methods are conditional
// writes: they apply the transition atomically against the store and
// return domain.ErrConflict when the precondition no longer holds, so
// concurrent duplicate calls cannot double-apply a transition.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	LatestPending(ctx context.Context, userID primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)

	// MarkPaid moves a Pending-payment order to Confirmed/Paid and
	// attaches any fulfillment artifacts. Returns domain.ErrConflict
	// if the order is already paid.
	MarkPaid(ctx context.Context, id primitive.ObjectID, artifacts []models.Artifact) (*models.Order, error)

	// MarkCancelled moves a Confirmed order to Cancelled with the given
	// refund classification. Returns domain.ErrConflict if the order is
	// not currently Confirmed.
	MarkCancelled(ctx context.Context, id primitive.ObjectID, refundStatus string) (*models.Order, error)

	// SetStatus moves orderStatus from expected to next, failing with
	// domain.ErrConflict when the current status is no longer expected.
	SetStatus(ctx context.Context, id primitive.ObjectID, expected, next string) (*models.Order, error)

	Delete(ctx context.Context, id primitive.ObjectID) error
}
