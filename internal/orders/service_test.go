package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookverse/internal/catalog"
	"bookverse/internal/domain"
	"bookverse/internal/models"
)

type fakeCartStore struct {
	carts map[primitive.ObjectID]*models.Cart
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
	f.carts[cart.UserID] = cart
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, userID primitive.ObjectID) error {
	delete(f.carts, userID)
	return nil
}

type fakeOrderStore struct {
	orders map[primitive.ObjectID]*models.Order
	seq    []primitive.ObjectID
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[primitive.ObjectID]*models.Order{}}
}

func (f *fakeOrderStore) Insert(_ context.Context, order *models.Order) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	copied := *order
	copied.ID = id
	copied.Items = append([]models.CartItem(nil), order.Items...)
	f.orders[id] = &copied
	f.seq = append(f.seq, id)
	return id, nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) LatestPending(_ context.Context, userID primitive.ObjectID) (*models.Order, error) {
	for i := len(f.seq) - 1; i >= 0; i-- {
		order := f.orders[f.seq[i]]
		if order != nil && order.UserID == userID && order.OrderStatus == models.OrderStatusPending {
			copied := *order
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: no pending order", domain.ErrNotFound)
}

func (f *fakeOrderStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders := []models.Order{}
	for i := len(f.seq) - 1; i >= 0; i-- {
		if order := f.orders[f.seq[i]]; order != nil && order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeOrderStore) ListAll(_ context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	for i := len(f.seq) - 1; i >= 0; i-- {
		if order := f.orders[f.seq[i]]; order != nil {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeOrderStore) MarkPaid(_ context.Context, id primitive.ObjectID, artifacts []models.Artifact) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, fmt.Errorf("%w: order already paid", domain.ErrConflict)
	}
	order.OrderStatus = models.OrderStatusConfirmed
	order.PaymentStatus = models.PaymentStatusPaid
	order.Artifacts = artifacts
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) MarkCancelled(_ context.Context, id primitive.ObjectID, refundStatus string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	if order.OrderStatus != models.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: order is not in a cancellable state", domain.ErrConflict)
	}
	order.OrderStatus = models.OrderStatusCancelled
	order.RefundStatus = refundStatus
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) SetStatus(_ context.Context, id primitive.ObjectID, expected, next string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	if order.OrderStatus != expected {
		return nil, fmt.Errorf("%w: order is no longer %s", domain.ErrConflict, expected)
	}
	order.OrderStatus = next
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.orders[id]; !ok {
		return fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	delete(f.orders, id)
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (f *fakeNotifier) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func details() models.CustomerDetails {
	return models.CustomerDetails{
		Name:    "Asha",
		Phone:   "9999999999",
		Email:   "asha@example.com",
		Address: "12 Lake Road",
		City:    "Pune",
		State:   "MH",
		Pincode: "411001",
	}
}

func newTestService() (*Service, *fakeOrderStore, *fakeCartStore, *fakeNotifier) {
	orderStore := newFakeOrderStore()
	cartStore := &fakeCartStore{carts: map[primitive.ObjectID]*models.Cart{}}
	notifier := &fakeNotifier{}
	svc := New(orderStore, cartStore, catalog.Default(), notifier, "https://shop.example/")
	svc.sendAsync = false
	return svc, orderStore, cartStore, notifier
}

func seedCart(carts *fakeCartStore, userID primitive.ObjectID, items ...models.CartItem) {
	carts.carts[userID] = &models.Cart{
		UserID:      userID,
		Items:       items,
		TotalAmount: models.CartTotal(items),
	}
}

func TestCreateRejectsMissingDetailsAndEmptyCart(t *testing.T) {
	svc, _, carts, _ := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	incomplete := details()
	incomplete.Pincode = ""
	if _, err := svc.Create(ctx, userID, incomplete, models.BookTypeHardCopy); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing pincode, got %v", err)
	}

	if _, err := svc.Create(ctx, userID, details(), models.BookTypeHardCopy); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for missing cart, got %v", err)
	}

	seedCart(carts, userID)
	if _, err := svc.Create(ctx, userID, details(), models.BookTypeHardCopy); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}

	seedCart(carts, userID, models.CartItem{Name: "Book A", Price: 100, Quantity: 1})
	if _, err := svc.Create(ctx, userID, details(), "Audio Copy"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown book type, got %v", err)
	}
}

func TestCreateSnapshotsCartWithoutClearingIt(t *testing.T) {
	svc, _, carts, _ := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	seedCart(carts, userID, models.CartItem{Name: "Book A", Price: 100, Quantity: 2})

	order, err := svc.Create(ctx, userID, details(), models.BookTypeHardCopy)
	if err != nil {
		t.Fatal(err)
	}

	if order.OrderStatus != models.OrderStatusPending || order.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("expected Pending/Pending, got %s/%s", order.OrderStatus, order.PaymentStatus)
	}
	if order.RefundStatus != models.RefundNotApplicable {
		t.Fatalf("expected refund Not Applicable, got %s", order.RefundStatus)
	}
	if order.TotalAmount != 200 {
		t.Fatalf("expected snapshot total 200, got %v", order.TotalAmount)
	}
	if _, ok := carts.carts[userID]; !ok {
		t.Fatal("cart must survive order creation")
	}

	// Later cart mutations never reach the snapshot.
	carts.carts[userID].Items[0].Quantity = 9
	stored, err := svc.LatestPending(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Items[0].Quantity != 2 {
		t.Fatalf("order snapshot changed with the cart: %+v", stored.Items)
	}
}

func TestLatestPendingReturnsNewestPendingOrder(t *testing.T) {
	svc, _, carts, _ := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	if _, err := svc.LatestPending(ctx, userID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found with no orders, got %v", err)
	}

	seedCart(carts, userID, models.CartItem{Name: "Book A", Price: 100, Quantity: 1})
	first, err := svc.Create(ctx, userID, details(), models.BookTypeHardCopy)
	if err != nil {
		t.Fatal(err)
	}
	seedCart(carts, userID, models.CartItem{Name: "Book B", Price: 50, Quantity: 1})
	second, err := svc.Create(ctx, userID, details(), models.BookTypeHardCopy)
	if err != nil {
		t.Fatal(err)
	}

	latest, err := svc.LatestPending(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.ID {
		t.Fatalf("expected newest pending order %s, got %s", second.ID.Hex(), latest.ID.Hex())
	}
	_ = first
}

func TestConfirmPaymentHappyPathClearsCart(t *testing.T) {
	svc, _, carts, notifier := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	seedCart(carts, userID, models.CartItem{Name: "Book A", Price: 100, Quantity: 2})
	order, err := svc.Create(ctx, userID, details(), models.BookTypeHardCopy)
	if err != nil {
		t.Fatal(err)
	}

	paid, err := svc.ConfirmPayment(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if paid.OrderStatus != models.OrderStatusConfirmed || paid.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("expected Confirmed/Paid, got %s/%s", paid.OrderStatus, paid.PaymentStatus)
	}
	if len(paid.Artifacts) != 0 {
		t.Fatalf("hard-copy order must not carry downloads, got %+v", paid.Artifacts)
	}
	if _, ok := carts.carts[userID]; ok {
		t.Fatal("cart must be deleted after a paid confirmation")
	}
	if len(notifier.sent) != 1 || notifier.sent[0].To != "asha@example.com" {
		t.Fatalf("expected one confirmation mail to the customer, got %+v", notifier.sent)
	}
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	svc, _, carts, notifier := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	seedCart(carts, userID, models.CartItem{Name: "Intro to Java Programming", Price: 250, Quantity: 1})
	order, err := svc.Create(ctx, userID, details(), models.BookTypeSoftCopy)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ConfirmPayment(ctx, order.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ConfirmPayment(ctx, order.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on second confirmation, got %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("fulfillment mail dispatched %d times, want 1", len(notifier.sent))
	}
}

func TestConfirmPaymentResolvesSoftCopyArtifacts(t *testing.T) {
	svc, _, carts, notifier := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	seedCart(carts, userID,
		models.CartItem{Name: "Intro to Java Programming", Price: 250, Quantity: 1},
		models.CartItem{Name: "Unrelated Title", Price: 90, Quantity: 1},
	)
	order, err := svc.Create(ctx, userID, details(), models.BookTypeSoftCopy)
	if err != nil {
		t.Fatal(err)
	}

	paid, err := svc.ConfirmPayment(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}

	if len(paid.Artifacts) != 1 {
		t.Fatalf("expected one resolved artifact, got %+v", paid.Artifacts)
	}
	artifact := paid.Artifacts[0]
	if artifact.FileRef != "java-programming.pdf" {
		t.Fatalf("expected java-programming.pdf, got %s", artifact.FileRef)
	}
	if artifact.GrantID == "" || !strings.Contains(artifact.URL, "https://shop.example/downloads/java-programming.pdf") {
		t.Fatalf("malformed download link: %+v", artifact)
	}
	if !strings.Contains(notifier.sent[0].Body, artifact.URL) {
		t.Fatal("confirmation mail must carry the download link")
	}
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.ConfirmPayment(context.Background(), primitive.NewObjectID()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConfirmPaymentSurvivesNotifierFailure(t *testing.T) {
	svc, _, carts, notifier := newTestService()
	notifier.err = fmt.Errorf("%w: smtp down", domain.ErrDelivery)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	seedCart(carts, userID, models.CartItem{Name: "Book A", Price: 100, Quantity: 1})
	order, err := svc.Create(ctx, userID, details(), models.BookTypeHardCopy)
	if err != nil {
		t.Fatal(err)
	}

	paid, err := svc.ConfirmPayment(ctx, order.ID)
	if err != nil {
		t.Fatalf("notifier failure must not fail a committed confirmation, got %v", err)
	}
	if paid.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("expected Paid, got %s", paid.PaymentStatus)
	}
}

func TestCancelRefundClassification(t *testing.T) {
	svc, _, carts, _ := newTestService()
	ctx := context.Background()

	confirm := func(bookType string) *models.Order {
		userID := primitive.NewObjectID()
		seedCart(carts, userID, models.CartItem{Name: "Intro to Java Programming", Price: 250, Quantity: 1})
		order, err := svc.Create(ctx, userID, details(), bookType)
		if err != nil {
			t.Fatal(err)
		}
		paid, err := svc.ConfirmPayment(ctx, order.ID)
		if err != nil {
			t.Fatal(err)
		}
		return paid
	}

	hard, err := svc.Cancel(ctx, confirm(models.BookTypeHardCopy).ID)
	if err != nil {
		t.Fatal(err)
	}
	if hard.OrderStatus != models.OrderStatusCancelled || hard.RefundStatus != models.RefundInitiated {
		t.Fatalf("hard copy: expected Cancelled/Initiated, got %s/%s", hard.OrderStatus, hard.RefundStatus)
	}

	soft, err := svc.Cancel(ctx, confirm(models.BookTypeSoftCopy).ID)
	if err != nil {
		t.Fatal(err)
	}
	if soft.RefundStatus != models.RefundNotApplicable {
		t.Fatalf("soft copy: expected Not Applicable, got %s", soft.RefundStatus)
	}
}

func TestCancelOnlyReachableFromConfirmed(t *testing.T) {
	svc, _, carts, _ := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	seedCart(carts, userID, models.CartItem{Name: "Book A", Price: 100, Quantity: 1})
	order, err := svc.Create(ctx, userID, details(), models.BookTypeHardCopy)
	if err != nil {
		t.Fatal(err)
	}

	// Still Pending: abandoned, not cancellable.
	if _, err := svc.Cancel(ctx, order.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict cancelling a pending order, got %v", err)
	}

	if _, err := svc.ConfirmPayment(ctx, order.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Cancel(ctx, order.ID); err != nil {
		t.Fatal(err)
	}

	// Already Cancelled.
	if _, err := svc.Cancel(ctx, order.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on repeat cancellation, got %v", err)
	}

	if _, err := svc.Cancel(ctx, primitive.NewObjectID()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown order, got %v", err)
	}
}

func TestListByUserNewestFirstAndNeverErrors(t *testing.T) {
	svc, _, carts, _ := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	orders, err := svc.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("listing with no orders should succeed, got %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected empty slice, got %+v", orders)
	}

	seedCart(carts, userID, models.CartItem{Name: "Book A", Price: 100, Quantity: 1})
	first, _ := svc.Create(ctx, userID, details(), models.BookTypeHardCopy)
	seedCart(carts, userID, models.CartItem{Name: "Book B", Price: 50, Quantity: 1})
	second, _ := svc.Create(ctx, userID, details(), models.BookTypeHardCopy)

	orders, err = svc.ListByUser(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 || orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Fatalf("expected newest first ordering, got %+v", orders)
	}
}

func TestUpdateStatusMovesForwardOnly(t *testing.T) {
	svc, _, carts, notifier := newTestService()
	userID := primitive.NewObjectID()
	ctx := context.Background()

	seedCart(carts, userID, models.CartItem{Name: "Book A", Price: 100, Quantity: 1})
	order, err := svc.Create(ctx, userID, details(), models.BookTypeHardCopy)
	if err != nil {
		t.Fatal(err)
	}

	// Pending orders are outside the fulfillment chain.
	if _, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusDispatched); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for unpaid order, got %v", err)
	}

	if _, err := svc.ConfirmPayment(ctx, order.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateStatus(ctx, order.ID, "Teleported"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusDispatched)
	if err != nil {
		t.Fatal(err)
	}
	if updated.OrderStatus != models.OrderStatusDispatched {
		t.Fatalf("expected Dispatched, got %s", updated.OrderStatus)
	}

	if _, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusDispatched); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict moving to the same status, got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusDelivered); err != nil {
		t.Fatal(err)
	}

	// Delivered is terminal.
	if _, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusOnTheWay); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict moving backwards from Delivered, got %v", err)
	}

	// One mail per successful move plus the payment confirmation.
	if len(notifier.sent) != 3 {
		t.Fatalf("expected 3 mails, got %d", len(notifier.sent))
	}
}
