package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/cart"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/kv"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/liststore"
)

type mockValidator struct {
	coupon    domain.Coupon
	err       error
	lastCode  string
	lastTotal decimal.Decimal
	calls     int
}

func (m *mockValidator) Validate(_ context.Context, code string, orderTotal decimal.Decimal) (domain.Coupon, error) {
	m.calls++
	m.lastCode = code
	m.lastTotal = orderTotal
	if m.err != nil {
		return domain.Coupon{}, m.err
	}
	return m.coupon, nil
}

var shopper = domain.Session{UserID: "u-1", Token: "tok"}

// fixedValidator adapts a single validator into a factory for tests that do
// not care which session bound it.
func fixedValidator(v CouponValidator) ValidatorFactory {
	return func(domain.Session) CouponValidator { return v }
}

func newTestCart(t *testing.T, items ...domain.CartItem) *cart.Manager {
	t.Helper()
	store := liststore.New[domain.CartItem](kv.NewMemoryStore(), "cart", zap.NewNop())
	m := cart.NewManager(context.Background(), store, zap.NewNop())
	for _, item := range items {
		require.NoError(t, m.Add(context.Background(), item))
	}
	return m
}

func cartItem(t *testing.T, id, price string) domain.CartItem {
	t.Helper()
	d, err := domain.ParsePrice(price)
	require.NoError(t, err)
	return domain.CartItem{ID: id, Title: "Item " + id, Price: d}
}

func TestSubtotal_DefaultsToPersonal(t *testing.T) {
	sut := NewEngine(newTestCart(t, cartItem(t, "p-1", "$49.00")), fixedValidator(&mockValidator{}))

	assert.Equal(t, "49.00", domain.FormatPrice(sut.Subtotal()))
}

func TestSubtotal_CommercialMultiplier(t *testing.T) {
	sut := NewEngine(newTestCart(t, cartItem(t, "p-1", "$49.00")), fixedValidator(&mockValidator{}))
	require.NoError(t, sut.SelectLicense("p-1", domain.LicenseCommercial))

	assert.Equal(t, "73.50", domain.FormatPrice(sut.Subtotal()))
}

func TestSelectLicense_UnknownTierRejected(t *testing.T) {
	sut := NewEngine(newTestCart(t), fixedValidator(&mockValidator{}))
	assert.ErrorIs(t, sut.SelectLicense("p-1", "enterprise"), ErrInvalidLicenseTier)
}

func TestApplyCoupon_PercentageTotal(t *testing.T) {
	validator := &mockValidator{coupon: domain.Coupon{
		ID:            "c-1",
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	}}
	sut := NewEngine(newTestCart(t, cartItem(t, "p-1", "$49.00")), fixedValidator(validator))
	require.NoError(t, sut.SelectLicense("p-1", domain.LicenseCommercial))

	_, err := sut.ApplyCoupon(context.Background(), shopper, "SAVE10")
	require.NoError(t, err)

	assert.True(t, validator.lastTotal.Equal(decimal.RequireFromString("73.5")))
	assert.Equal(t, "7.35", domain.FormatPrice(sut.Discount()))
	assert.Equal(t, "66.15", domain.FormatPrice(sut.Total()))
}

func TestApplyCoupon_ValidatorBoundToCallerSession(t *testing.T) {
	validator := &mockValidator{coupon: domain.Coupon{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	}}
	var bound []domain.Session
	sut := NewEngine(newTestCart(t, cartItem(t, "p-1", "$49.00")), func(s domain.Session) CouponValidator {
		bound = append(bound, s)
		return validator
	})

	_, err := sut.ApplyCoupon(context.Background(), shopper, "SAVE10")
	require.NoError(t, err)

	other := domain.Session{UserID: "u-2", Token: "tok-2"}
	_, err = sut.ApplyCoupon(context.Background(), other, "SAVE10")
	require.NoError(t, err)

	require.Len(t, bound, 2)
	assert.Equal(t, shopper, bound[0])
	assert.Equal(t, other, bound[1])
}

func TestApplyCoupon_EmptyCodeSkipsRemote(t *testing.T) {
	validator := &mockValidator{}
	sut := NewEngine(newTestCart(t), fixedValidator(validator))

	_, err := sut.ApplyCoupon(context.Background(), shopper, "   ")
	assert.ErrorIs(t, err, ErrEmptyCode)
	assert.Zero(t, validator.calls)
}

func TestApplyCoupon_RejectionClearsPreviousDiscount(t *testing.T) {
	validator := &mockValidator{coupon: domain.Coupon{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	}}
	sut := NewEngine(newTestCart(t, cartItem(t, "p-1", "$100.00")), fixedValidator(validator))

	_, err := sut.ApplyCoupon(context.Background(), shopper, "SAVE10")
	require.NoError(t, err)
	require.False(t, sut.Discount().IsZero())

	validator.err = errors.New("coupon requires a minimum order of $200")
	_, err = sut.ApplyCoupon(context.Background(), shopper, "BIGSPENDER")
	require.EqualError(t, err, "coupon requires a minimum order of $200")
	assert.True(t, sut.Discount().IsZero())

	_, applied := sut.Coupon()
	assert.False(t, applied)
}

func TestTotal_NeverNegative(t *testing.T) {
	validator := &mockValidator{coupon: domain.Coupon{
		Code:          "HUGE",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: decimal.NewFromInt(50),
	}}
	sut := NewEngine(newTestCart(t, cartItem(t, "p-1", "$20.00")), fixedValidator(validator))

	_, err := sut.ApplyCoupon(context.Background(), shopper, "HUGE")
	require.NoError(t, err)

	assert.Equal(t, "0.00", domain.FormatPrice(sut.Total()))
}

func TestDiscount_RecomputedWhenCartChanges(t *testing.T) {
	validator := &mockValidator{coupon: domain.Coupon{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	}}
	cartMgr := newTestCart(t, cartItem(t, "p-1", "$100.00"))
	sut := NewEngine(cartMgr, fixedValidator(validator))

	_, err := sut.ApplyCoupon(context.Background(), shopper, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "10.00", domain.FormatPrice(sut.Discount()))

	// Cart grows after the coupon was applied; the percent tracks it.
	require.NoError(t, cartMgr.Add(context.Background(), cartItem(t, "p-2", "$100.00")))
	assert.Equal(t, "20.00", domain.FormatPrice(sut.Discount()))
}

func TestQuote_Breakdown(t *testing.T) {
	validator := &mockValidator{coupon: domain.Coupon{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	}}
	sut := NewEngine(newTestCart(t, cartItem(t, "p-1", "$49.00")), fixedValidator(validator))
	require.NoError(t, sut.SelectLicense("p-1", domain.LicenseCommercial))
	_, err := sut.ApplyCoupon(context.Background(), shopper, "SAVE10")
	require.NoError(t, err)

	quote := sut.Quote()
	require.Len(t, quote.Lines, 1)
	assert.Equal(t, "73.50", quote.Lines[0].UnitPrice)
	assert.Equal(t, domain.LicenseCommercial, quote.Lines[0].LicenseTier)
	assert.Equal(t, "73.50", quote.Subtotal)
	assert.Equal(t, "7.35", quote.Discount)
	assert.Equal(t, "66.15", quote.Total)
	require.NotNil(t, quote.CouponCode)
	assert.Equal(t, "SAVE10", *quote.CouponCode)
}

func TestReset_DropsSelectionsAndCoupon(t *testing.T) {
	validator := &mockValidator{coupon: domain.Coupon{
		Code: "SAVE10", DiscountType: domain.DiscountPercentage, DiscountValue: decimal.NewFromInt(10),
	}}
	sut := NewEngine(newTestCart(t, cartItem(t, "p-1", "$10.00")), fixedValidator(validator))
	require.NoError(t, sut.SelectLicense("p-1", domain.LicenseExtended))
	_, err := sut.ApplyCoupon(context.Background(), shopper, "SAVE10")
	require.NoError(t, err)

	sut.Reset()

	assert.Equal(t, domain.LicensePersonal, sut.License("p-1"))
	_, applied := sut.Coupon()
	assert.False(t, applied)
}
