package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/cart"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
)

// CouponValidator is the external coupon collaborator. A rejection error's
// message is the server's wording and is surfaced verbatim.
type CouponValidator interface {
	Validate(ctx context.Context, code string, orderTotal decimal.Decimal) (domain.Coupon, error)
}

// ValidatorFactory binds a validator to the calling session, so the remote
// call carries that caller's credentials.
type ValidatorFactory func(session domain.Session) CouponValidator

var (
	ErrEmptyCode          = errors.New("promo code is empty")
	ErrInvalidLicenseTier = errors.New("unknown license tier")
)

// Engine computes checkout pricing over the current cart: license-adjusted
// per-item prices, the subtotal, and the coupon discount. License selections
// and the applied coupon are ephemeral checkout state, never persisted.
type Engine struct {
	mu           sync.Mutex
	cart         *cart.Manager
	newValidator ValidatorFactory
	licenses     map[string]domain.LicenseTier
	coupon       *domain.Coupon
}

func NewEngine(cart *cart.Manager, newValidator ValidatorFactory) *Engine {
	return &Engine{
		cart:         cart,
		newValidator: newValidator,
		licenses:     make(map[string]domain.LicenseTier),
	}
}

// SelectLicense records the tier for one cart item. Items without a
// selection check out as personal.
func (e *Engine) SelectLicense(itemID string, tier domain.LicenseTier) error {
	if !tier.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLicenseTier, tier)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.licenses[itemID] = tier
	return nil
}

// License returns the effective tier for an item.
func (e *Engine) License(itemID string) domain.LicenseTier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.licenseLocked(itemID)
}

func (e *Engine) licenseLocked(itemID string) domain.LicenseTier {
	if tier, ok := e.licenses[itemID]; ok {
		return tier
	}
	return domain.LicensePersonal
}

// EffectivePrice is the catalog price scaled by the item's license tier.
func (e *Engine) EffectivePrice(item domain.CartItem) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return item.Price.Mul(e.licenseLocked(item.ID).Multiplier())
}

// Subtotal sums effective prices over the whole cart at full precision.
func (e *Engine) Subtotal() decimal.Decimal {
	items := e.cart.Items()

	e.mu.Lock()
	defer e.mu.Unlock()

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(e.licenseLocked(item.ID).Multiplier()))
	}
	return subtotal
}

// ApplyCoupon validates the code against the coupon backend with the current
// subtotal, calling out as the given session. Blank codes are rejected
// locally without a remote call. Any rejection clears a previously applied
// coupon; the returned error carries the server's message unchanged.
func (e *Engine) ApplyCoupon(ctx context.Context, session domain.Session, code string) (domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Coupon{}, ErrEmptyCode
	}

	coupon, err := e.newValidator(session).Validate(ctx, code, e.Subtotal())

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.coupon = nil
		return domain.Coupon{}, err
	}
	e.coupon = &coupon
	return coupon, nil
}

// RemoveCoupon drops the applied coupon, if any.
func (e *Engine) RemoveCoupon() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.coupon = nil
}

// Coupon returns the applied coupon, or false when none is applied.
func (e *Engine) Coupon() (domain.Coupon, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.coupon == nil {
		return domain.Coupon{}, false
	}
	return *e.coupon, true
}

// Discount recomputes the discount from the stored coupon terms against the
// current subtotal, so a cart that changed after the coupon was applied can
// never carry a stale amount.
func (e *Engine) Discount() decimal.Decimal {
	subtotal := e.Subtotal()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.coupon == nil {
		return decimal.Zero
	}
	return e.coupon.DiscountFor(subtotal)
}

// Total is subtotal minus discount, clamped at zero. Full precision; callers
// round at the edge.
func (e *Engine) Total() decimal.Decimal {
	total := e.Subtotal().Sub(e.Discount())
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Reset clears license selections and the applied coupon, typically after a
// completed checkout.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.licenses = make(map[string]domain.LicenseTier)
	e.coupon = nil
}
