package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookverse/internal/domain"
	"bookverse/internal/models"
)

type fakeCartStore struct {
	carts map[primitive.ObjectID]*models.Cart
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[primitive.ObjectID]*models.Cart{}}
}

func (f *fakeCartStore) Get(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, ok := f.carts[userID]
	if !ok {
		return nil, fmt.Errorf("%w: cart", domain.ErrNotFound)
	}
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (f *fakeCartStore) Upsert(_ context.Context, cart *models.Cart) error {
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	f.carts[cart.UserID] = &copied
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, userID primitive.ObjectID) error {
	delete(f.carts, userID)
	return nil
}

func TestAddItemRequiresNameAndPrice(t *testing.T) {
	svc := New(newFakeCartStore())
	userID := primitive.NewObjectID()

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{Name: "", Price: 100}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{Name: "Book A", Price: 0}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing price, got %v", err)
	}
}

func TestAddItemAggregatesByName(t *testing.T) {
	svc := New(newFakeCartStore())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, userID, AddItemInput{Name: "Book A", Price: 100}); err != nil {
		t.Fatal(err)
	}
	cart, err := svc.AddItem(ctx, userID, AddItemInput{Name: "Book A", Price: 100})
	if err != nil {
		t.Fatal(err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected one aggregated line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
	if cart.TotalAmount != 200 {
		t.Fatalf("expected total 200, got %v", cart.TotalAmount)
	}
}

func TestTotalAlwaysMatchesRecomputation(t *testing.T) {
	svc := New(newFakeCartStore())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	mutations := []func() (*models.Cart, error){
		func() (*models.Cart, error) { return svc.AddItem(ctx, userID, AddItemInput{Name: "Book A", Price: 100}) },
		func() (*models.Cart, error) { return svc.AddItem(ctx, userID, AddItemInput{Name: "Book B", Price: 49.5}) },
		func() (*models.Cart, error) { return svc.IncreaseItem(ctx, userID, "Book A") },
		func() (*models.Cart, error) { return svc.IncreaseItem(ctx, userID, "Book B") },
		func() (*models.Cart, error) { return svc.DecreaseItem(ctx, userID, "Book A") },
		func() (*models.Cart, error) { return svc.RemoveItem(ctx, userID, "Book B") },
		func() (*models.Cart, error) { return svc.AddItem(ctx, userID, AddItemInput{Name: "Book C", Price: 10}) },
	}

	for i, mutate := range mutations {
		cart, err := mutate()
		if err != nil {
			t.Fatalf("mutation %d failed: %v", i, err)
		}
		if got, want := cart.TotalAmount, models.CartTotal(cart.Items); got != want {
			t.Fatalf("mutation %d: total %v drifted from recomputed %v", i, got, want)
		}
		if cart.TotalAmount < 0 {
			t.Fatalf("mutation %d: total went negative", i)
		}
	}
}

func TestDecreaseRemovesLineAtZeroQuantity(t *testing.T) {
	svc := New(newFakeCartStore())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, userID, AddItemInput{Name: "Book A", Price: 100}); err != nil {
		t.Fatal(err)
	}
	cart, err := svc.DecreaseItem(ctx, userID, "Book A")
	if err != nil {
		t.Fatal(err)
	}

	if len(cart.Items) != 0 {
		t.Fatalf("expected line removed at quantity 0, got %+v", cart.Items)
	}
	for _, item := range cart.Items {
		if item.Quantity <= 0 {
			t.Fatalf("line persisted with quantity %d", item.Quantity)
		}
	}
	if cart.TotalAmount != 0 {
		t.Fatalf("expected zero total, got %v", cart.TotalAmount)
	}
}

func TestMutationsSwallowMissingCartAndItem(t *testing.T) {
	svc := New(newFakeCartStore())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	// No cart exists at all.
	cart, err := svc.IncreaseItem(ctx, userID, "Ghost")
	if err != nil {
		t.Fatalf("increase on missing cart should succeed, got %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalAmount != 0 {
		t.Fatalf("expected synthetic empty cart, got %+v", cart)
	}

	if _, err := svc.DecreaseItem(ctx, userID, "Ghost"); err != nil {
		t.Fatalf("decrease on missing cart should succeed, got %v", err)
	}
	if _, err := svc.RemoveItem(ctx, userID, "Ghost"); err != nil {
		t.Fatalf("remove on missing cart should succeed, got %v", err)
	}

	// Cart exists but the item does not.
	if _, err := svc.AddItem(ctx, userID, AddItemInput{Name: "Book A", Price: 100}); err != nil {
		t.Fatal(err)
	}
	cart, err = svc.RemoveItem(ctx, userID, "Ghost")
	if err != nil {
		t.Fatalf("remove of missing item should succeed, got %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("cart should be untouched, got %+v", cart.Items)
	}
}

func TestGetReturnsSyntheticEmptyCart(t *testing.T) {
	svc := New(newFakeCartStore())
	userID := primitive.NewObjectID()

	cart, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get on missing cart should succeed, got %v", err)
	}
	if cart.Items == nil || len(cart.Items) != 0 || cart.TotalAmount != 0 {
		t.Fatalf("expected {items:[], totalAmount:0}, got %+v", cart)
	}
}
