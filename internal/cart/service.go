// Package cart owns the per-user cart aggregate: line-item mutations
// and total recomputation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookverse/internal/domain"
	"bookverse/internal/models"
	"bookverse/internal/store"
)

type Service struct {
	carts store.CartStore
}

func New(carts store.CartStore) *Service {
	return &Service{carts: carts}
}

type AddItemInput struct {
	Name  string
	Price float64
	Image string
}

// AddItem appends a new line with quantity 1, or bumps the quantity of
// an existing line with the same name.
func (s *Service) AddItem(ctx context.Context, userID primitive.ObjectID, in AddItemInput) (*models.Cart, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price <= 0 {
		return nil, fmt.Errorf("%w: name and price are required", domain.ErrValidation)
	}

	cart, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		cart = models.EmptyCart(userID)
		cart.CreatedAt = time.Now()
	} else if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].Name == name {
			cart.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, models.CartItem{
			Name:     name,
			Price:    in.Price,
			Quantity: 1,
			Image:    strings.TrimSpace(in.Image),
		})
	}

	return s.save(ctx, cart)
}

// IncreaseItem bumps a line's quantity by one. A missing cart or line
// is a no-op success so that duplicate clicks and client retries stay
// harmless.
func (s *Service) IncreaseItem(ctx context.Context, userID primitive.ObjectID, name string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return models.EmptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].Name == name {
			cart.Items[i].Quantity++
			return s.save(ctx, cart)
		}
	}
	return cart, nil
}

// DecreaseItem lowers a line's quantity by one, removing the line when
// it reaches zero. Missing cart or line is a no-op success.
func (s *Service) DecreaseItem(ctx context.Context, userID primitive.ObjectID, name string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return models.EmptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].Name != name {
			continue
		}
		cart.Items[i].Quantity--
		if cart.Items[i].Quantity <= 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		}
		return s.save(ctx, cart)
	}
	return cart, nil
}

// RemoveItem drops a line entirely. Missing cart or line is a no-op
// success.
func (s *Service) RemoveItem(ctx context.Context, userID primitive.ObjectID, name string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return models.EmptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].Name == name {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return s.save(ctx, cart)
		}
	}
	return cart, nil
}

// Get returns the user's cart, or a synthetic empty cart when none
// exists.
func (s *Service) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return models.EmptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.TotalAmount = models.CartTotal(cart.Items)
	if err := s.carts.Upsert(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
