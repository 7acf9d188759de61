package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookverse/internal/domain"
	"bookverse/internal/models"
)

// MongoCartStore keeps carts in the "carts" collection, one document
// per user.
type MongoCartStore struct {
	col *mongo.Collection
}

func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{col: db.Collection("carts")}
}

func (s *MongoCartStore) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: cart for user %s", domain.ErrNotFound, userID.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return &cart, nil
}

func (s *MongoCartStore) Upsert(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = cart.UpdatedAt
	}
	_, err := s.col.ReplaceOne(
		ctx,
		bson.M{"userId": cart.UserID},
		cart,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}

func (s *MongoCartStore) Delete(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// MongoOrderStore keeps orders in the "orders" collection. Orders are
// append-only; only status fields are updated in place.
type MongoOrderStore struct {
	col *mongo.Collection
}

func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{col: db.Collection("orders")}
}

func (s *MongoOrderStore) Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert order: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("insert order: unexpected inserted id type")
	}
	return id, nil
}

func (s *MongoOrderStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) LatestPending(ctx context.Context, userID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.col.FindOne(
		ctx,
		bson.M{"userId": userID, "orderStatus": models.OrderStatusPending},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: no pending order for user %s", domain.ErrNotFound, userID.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("find pending order: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.list(ctx, bson.M{"userId": userID})
}

func (s *MongoOrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, bson.M{})
}

func (s *MongoOrderStore) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// MarkPaid is the idempotency boundary of payment confirmation: the
// paymentStatus filter makes the write a check-and-set, so of two
// concurrent confirmations exactly one sees the Pending document.
func (s *MongoOrderStore) MarkPaid(ctx context.Context, id primitive.ObjectID, artifacts []models.Artifact) (*models.Order, error) {
	set := bson.M{
		"orderStatus":   models.OrderStatusConfirmed,
		"paymentStatus": models.PaymentStatusPaid,
		"updatedAt":     time.Now(),
	}
	if len(artifacts) > 0 {
		set["artifacts"] = artifacts
	}

	var order models.Order
	err := s.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "paymentStatus": models.PaymentStatusPending},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missOrConflict(ctx, id, "order already paid")
	}
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) MarkCancelled(ctx context.Context, id primitive.ObjectID, refundStatus string) (*models.Order, error) {
	var order models.Order
	err := s.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "orderStatus": models.OrderStatusConfirmed},
		bson.M{"$set": bson.M{
			"orderStatus":  models.OrderStatusCancelled,
			"refundStatus": refundStatus,
			"updatedAt":    time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missOrConflict(ctx, id, "order is not in a cancellable state")
	}
	if err != nil {
		return nil, fmt.Errorf("mark order cancelled: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) SetStatus(ctx context.Context, id primitive.ObjectID, expected, next string) (*models.Order, error) {
	var order models.Order
	err := s.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "orderStatus": expected},
		bson.M{"$set": bson.M{"orderStatus": next, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missOrConflict(ctx, id, fmt.Sprintf("order is no longer %s", expected))
	}
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id.Hex())
	}
	return nil
}

// missOrConflict disambiguates a conditional-update miss: either the
// order does not exist at all, or it exists but fails the precondition.
func (s *MongoOrderStore) missOrConflict(ctx context.Context, id primitive.ObjectID, conflictMsg string) error {
	count, err := s.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("check order existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: order %s", domain.ErrNotFound, id.Hex())
	}
	return fmt.Errorf("%w: %s", domain.ErrConflict, conflictMsg)
}
