// Package orders drives the order state machine:
//
//	Pending -> Confirmed(paid) -> Dispatched -> On The Way -> Delivered
//	                           -> Cancelled
//
// Delivered and Cancelled are terminal. refundStatus is a side channel
// decided at cancellation time from the purchase type.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookverse/internal/catalog"
	"bookverse/internal/domain"
	"bookverse/internal/models"
	"bookverse/internal/notify"
	"bookverse/internal/store"
)

type Service struct {
	orders   store.OrderStore
	carts    store.CartStore
	resolver *catalog.Resolver
	notifier notify.Notifier
	baseURL  string

	nowFunc   func() time.Time
	sendAsync bool
}

func New(orders store.OrderStore, carts store.CartStore, resolver *catalog.Resolver, notifier notify.Notifier, baseURL string) *Service {
	return &Service{
		orders:    orders,
		carts:     carts,
		resolver:  resolver,
		notifier:  notifier,
		baseURL:   strings.TrimRight(baseURL, "/"),
		nowFunc:   time.Now,
		sendAsync: true,
	}
}

// Create snapshots the user's cart into a new Pending order. The cart
// itself is left untouched so an abandoned checkout keeps the user's
// selection.
func (s *Service) Create(ctx context.Context, userID primitive.ObjectID, details models.CustomerDetails, bookType string) (*models.Order, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}
	if bookType != models.BookTypeSoftCopy && bookType != models.BookTypeHardCopy {
		return nil, fmt.Errorf("%w: bookType must be %q or %q", domain.ErrValidation, models.BookTypeSoftCopy, models.BookTypeHardCopy)
	}

	crt, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	if len(crt.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	now := s.nowFunc()
	order := &models.Order{
		UserID:          userID,
		CustomerDetails: details,
		Items:           append([]models.CartItem(nil), crt.Items...),
		TotalAmount:     models.CartTotal(crt.Items),
		BookType:        bookType,
		OrderStatus:     models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		RefundStatus:    models.RefundNotApplicable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	id, err := s.orders.Insert(ctx, order)
	if err != nil {
		return nil, err
	}
	order.ID = id

	log.Println("[ORDER] [INFO] order created:", id.Hex(), "user:", userID.Hex())
	return order, nil
}

// LatestPending returns the user's most recent Pending order, the one a
// payment confirmation would apply to.
func (s *Service) LatestPending(ctx context.Context, userID primitive.ObjectID) (*models.Order, error) {
	return s.orders.LatestPending(ctx, userID)
}

// ConfirmPayment marks the order paid and confirmed. The paid write is
// a conditional update, so a retried or double-clicked confirmation
// fails with a conflict instead of fulfilling twice. The cart is
// deleted strictly after the paid write is durable; the confirmation
// mail is dispatched outside the request path.
func (s *Service) ConfirmPayment(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var artifacts []models.Artifact
	if order.BookType == models.BookTypeSoftCopy {
		artifacts = s.artifactsFor(order.Items)
	}

	updated, err := s.orders.MarkPaid(ctx, orderID, artifacts)
	if err != nil {
		return nil, err
	}

	// The order is durably paid from here on; cleanup and mail must not
	// fail the confirmation.
	if err := s.carts.Delete(ctx, updated.UserID); err != nil {
		log.Println("[ORDER] [ERROR] cart cleanup after payment failed:", err)
	}

	details := updated.CustomerDetails
	subject, body := notify.PaymentConfirmedMail(details.Name, updated.ID.Hex(), updated.Artifacts)
	s.dispatch(details.Email, subject, body)

	log.Println("[ORDER] [INFO] payment confirmed:", updated.ID.Hex())
	return updated, nil
}

// Cancel moves a Confirmed order to Cancelled. Hard-copy purchases get
// a refund initiated; digital goods are non-refundable by policy.
func (s *Service) Cancel(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus != models.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: only confirmed orders can be cancelled", domain.ErrConflict)
	}

	refund := models.RefundNotApplicable
	if order.BookType == models.BookTypeHardCopy {
		refund = models.RefundInitiated
	}

	updated, err := s.orders.MarkCancelled(ctx, orderID, refund)
	if err != nil {
		return nil, err
	}

	details := updated.CustomerDetails
	subject, body := notify.CancellationMail(details.Name, updated.ID.Hex(), refund == models.RefundInitiated)
	s.dispatch(details.Email, subject, body)

	log.Println("[ORDER] [INFO] order cancelled:", updated.ID.Hex(), "refund:", refund)
	return updated, nil
}

// ListByUser returns the user's orders, newest first. No orders is an
// empty slice, not an error.
func (s *Service) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order, newest first, for the admin dashboard.
func (s *Service) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAll(ctx)
}

var fulfillmentRank = map[string]int{
	models.OrderStatusConfirmed:  1,
	models.OrderStatusDispatched: 2,
	models.OrderStatusOnTheWay:   3,
	models.OrderStatusDelivered:  4,
}

// UpdateStatus moves a paid order forward along the delivery chain and
// mails the customer. Cancelled and Pending orders are not movable, and
// the chain only goes forward.
func (s *Service) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status string) (*models.Order, error) {
	targetRank, ok := fulfillmentRank[status]
	if !ok || status == models.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	currentRank, ok := fulfillmentRank[order.OrderStatus]
	if !ok || order.PaymentStatus != models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: order is not in the fulfillment chain", domain.ErrConflict)
	}
	if targetRank <= currentRank {
		return nil, fmt.Errorf("%w: cannot move order back from %s to %s", domain.ErrConflict, order.OrderStatus, status)
	}

	updated, err := s.orders.SetStatus(ctx, orderID, order.OrderStatus, status)
	if err != nil {
		return nil, err
	}

	details := updated.CustomerDetails
	subject, body := notify.OrderStatusMail(status, details.Name, updated.ID.Hex())
	s.dispatch(details.Email, subject, body)

	return updated, nil
}

// Delete removes an order outright. Admin cleanup only; the transaction
// flow itself never deletes orders.
func (s *Service) Delete(ctx context.Context, orderID primitive.ObjectID) error {
	return s.orders.Delete(ctx, orderID)
}

func (s *Service) artifactsFor(items []models.CartItem) []models.Artifact {
	artifacts := make([]models.Artifact, 0, len(items))
	for _, item := range items {
		fileRef, ok := s.resolver.Resolve(item.Name)
		if !ok {
			log.Println("[ORDER] [WARN] no download artifact for:", item.Name)
			continue
		}
		grant := uuid.NewString()
		// Links point at the download host behind PUBLIC_BASE_URL,
		// which validates the grant id before serving the file. This
		// service only mints the links and records the grants.
		artifacts = append(artifacts, models.Artifact{
			Name:    item.Name,
			FileRef: fileRef,
			GrantID: grant,
			URL:     fmt.Sprintf("%s/downloads/%s?grant=%s", s.baseURL, fileRef, grant),
		})
	}
	return artifacts
}

// dispatch sends mail off the request path. The transition the mail
// reports is already committed, so a failed send is only logged.
func (s *Service) dispatch(to, subject, body string) {
	send := func() {
		if err := s.notifier.Send(to, subject, body); err != nil {
			log.Println("[NOTIFY] [ERROR]", err)
		}
	}
	if s.sendAsync {
		go send()
		return
	}
	send()
}

func validateDetails(details models.CustomerDetails) error {
	required := []string{
		details.Name,
		details.Phone,
		details.Email,
		details.Address,
		details.City,
		details.State,
		details.Pincode,
	}
	for _, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: all customer details are required", domain.ErrValidation)
		}
	}
	return nil
}
