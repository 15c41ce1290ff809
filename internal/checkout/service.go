// Package checkout drives one checkout attempt end to end: it builds the
// order from the cart and pricing engine, journals every state transition
// locally, and talks to the order and payment collaborators.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/cart"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/pricing"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotAuthenticated  = errors.New("checkout requires a signed-in user")
	ErrNotPaymentPending = errors.New("session is not awaiting payment")
)

// OrderAPI is the slice of the storefront API the checkout flow needs.
type OrderAPI interface {
	CreateOrder(ctx context.Context, order domain.Order) (string, error)
	CreatePaymentOrder(ctx context.Context, orderID string, amount decimal.Decimal) (domain.PaymentOrder, error)
	VerifyPayment(ctx context.Context, confirmation domain.PaymentConfirmation) error
}

// APIFactory binds an OrderAPI client to the session placing the order, so
// every order and payment call carries that caller's credentials.
type APIFactory func(session domain.Session) OrderAPI

// Result is what the caller gets back from Initiate. When Replayed is true
// the idempotency key had already been used and no new order was created.
type Result struct {
	CheckoutID string
	OrderID    string
	Payment    domain.PaymentOrder
	Status     domain.CheckoutStatus
	Replayed   bool
}

type Service struct {
	repo   repository.RepoInterface
	cart   *cart.Manager
	engine *pricing.Engine
	newAPI APIFactory
	logger *zap.Logger
}

func NewService(repo repository.RepoInterface, cart *cart.Manager, engine *pricing.Engine, newAPI APIFactory, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cart:   cart,
		engine: engine,
		newAPI: newAPI,
		logger: logger,
	}
}

// Initiate starts a checkout for the given idempotency key. A key that was
// already used returns the recorded session state instead of creating a
// second order.
func (s *Service) Initiate(ctx context.Context, session domain.Session, idempotencyKey, paymentMethod string) (*Result, error) {
	if !session.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if s.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	existing, err := s.repo.GetSessionByIdempotencyKey(ctx, idempotencyKey)
	if err == nil {
		s.logger.Info("idempotency key replayed",
			zap.String("checkout_id", existing.ID),
			zap.String("status", existing.Status.String()))
		return resultFrom(existing, true), nil
	}
	if !errors.Is(err, repository.ErrIdempotencyKeyNotFound) {
		return nil, fmt.Errorf("look up idempotency key: %w", err)
	}

	order := s.buildOrder(paymentMethod)
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	checkout := &repository.CheckoutSession{
		ID:             uuid.New().String(),
		UserID:         session.UserID,
		IdempotencyKey: idempotencyKey,
		Status:         domain.CheckoutStatusInitiated,
		OrderPayload:   payload,
		TotalAmount:    order.TotalPrice,
	}
	if err := s.repo.CreateCheckoutSession(ctx, checkout); err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	api := s.newAPI(session)

	orderID, err := api.CreateOrder(ctx, order)
	if err != nil {
		s.fail(ctx, checkout.ID, "create order", err)
		return nil, err
	}

	payment, err := api.CreatePaymentOrder(ctx, orderID, s.engine.Total())
	if err != nil {
		s.fail(ctx, checkout.ID, "create payment order", err)
		return nil, err
	}

	if err := s.repo.SetPaymentOrder(ctx, checkout.ID, orderID, payment.GatewayID); err != nil {
		return nil, fmt.Errorf("record payment order: %w", err)
	}

	return &Result{
		CheckoutID: checkout.ID,
		OrderID:    orderID,
		Payment:    payment,
		Status:     domain.CheckoutStatusPaymentPending,
	}, nil
}

// Confirm verifies the gateway callback for a PAYMENT_PENDING session, as
// the given session. On a verified payment the checkout is completed, its
// outbox event enqueued, and the cart and pricing state cleared. A failed
// verification marks the checkout FAILED and leaves the cart intact.
func (s *Service) Confirm(ctx context.Context, session domain.Session, checkoutID string, confirmation domain.PaymentConfirmation) error {
	checkout, err := s.repo.GetSessionByID(ctx, checkoutID)
	if err != nil {
		return err
	}
	if checkout.Status != domain.CheckoutStatusPaymentPending {
		return fmt.Errorf("%w: %s", ErrNotPaymentPending, checkout.Status)
	}

	if err := s.newAPI(session).VerifyPayment(ctx, confirmation); err != nil {
		s.fail(ctx, checkout.ID, "verify payment", err)
		return err
	}

	if err := s.repo.UpdateSessionStatus(ctx, checkout.ID, domain.CheckoutStatusPaymentCompleted); err != nil {
		return fmt.Errorf("mark payment completed: %w", err)
	}

	event := completedEvent{
		CheckoutID:  checkout.ID,
		UserID:      checkout.UserID,
		OrderID:     checkout.OrderID.String,
		TotalAmount: checkout.TotalAmount,
		CompletedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal completed event: %w", err)
	}
	if err := s.repo.CompleteSession(ctx, checkout.ID, payload); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.logger.Warn("could not clear cart after checkout", zap.Error(err))
	}
	s.engine.Reset()

	s.logger.Info("checkout completed",
		zap.String("checkout_id", checkout.ID),
		zap.String("order_id", checkout.OrderID.String),
		zap.String("total", checkout.TotalAmount))
	return nil
}

// Status reports the journaled state of a checkout attempt.
func (s *Service) Status(ctx context.Context, checkoutID string) (domain.CheckoutStatus, error) {
	checkout, err := s.repo.GetSessionByID(ctx, checkoutID)
	if err != nil {
		return "", err
	}
	return checkout.Status, nil
}

func (s *Service) buildOrder(paymentMethod string) domain.Order {
	items := s.cart.Items()
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:   item.ID,
			Title:       item.Title,
			LicenseTier: s.engine.License(item.ID),
			UnitPrice:   domain.FormatPrice(s.engine.EffectivePrice(item)),
		})
	}

	var couponCode *string
	if coupon, ok := s.engine.Coupon(); ok {
		code := coupon.Code
		couponCode = &code
	}

	return domain.Order{
		OrderItems:     orderItems,
		PaymentMethod:  paymentMethod,
		TotalPrice:     domain.FormatPrice(s.engine.Total()),
		DiscountAmount: domain.FormatPrice(s.engine.Discount()),
		CouponCode:     couponCode,
	}
}

// fail best-effort journals a FAILED transition; the original error is what
// the caller sees.
func (s *Service) fail(ctx context.Context, checkoutID, stage string, cause error) {
	s.logger.Error("checkout step failed",
		zap.String("checkout_id", checkoutID),
		zap.String("stage", stage),
		zap.Error(cause))
	if err := s.repo.UpdateSessionStatus(ctx, checkoutID, domain.CheckoutStatusFailed); err != nil {
		s.logger.Error("could not mark checkout failed",
			zap.String("checkout_id", checkoutID), zap.Error(err))
	}
}

func resultFrom(session *repository.CheckoutSession, replayed bool) *Result {
	return &Result{
		CheckoutID: session.ID,
		OrderID:    session.OrderID.String,
		Payment: domain.PaymentOrder{
			OrderID:   session.OrderID.String,
			GatewayID: session.GatewayOrderID.String,
			Amount:    session.TotalAmount,
		},
		Status:   session.Status,
		Replayed: replayed,
	}
}

type completedEvent struct {
	CheckoutID  string    `json:"checkout_id"`
	UserID      string    `json:"user_id"`
	OrderID     string    `json:"order_id"`
	TotalAmount string    `json:"total_amount"`
	CompletedAt time.Time `json:"completed_at"`
}
