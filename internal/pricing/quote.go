package pricing

import "github.com/appnity-softwares/digitalEcom-sub000/internal/domain"

// QuoteLine is one cart item priced for checkout.
type QuoteLine struct {
	ProductID   string             `json:"productId"`
	Title       string             `json:"title"`
	LicenseTier domain.LicenseTier `json:"licenseTier"`
	UnitPrice   string             `json:"unitPrice"`
}

// Quote is the rendered pricing breakdown shown before checkout. Amounts are
// rounded to cents here, at the edge, and nowhere earlier.
type Quote struct {
	Lines      []QuoteLine `json:"lines"`
	Subtotal   string      `json:"subtotal"`
	Discount   string      `json:"discount"`
	CouponCode *string     `json:"couponCode"`
	Total      string      `json:"total"`
	Currency   string      `json:"currency"`
}

// Quote renders the current cart, license selections and discount.
func (e *Engine) Quote() Quote {
	items := e.cart.Items()

	lines := make([]QuoteLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, QuoteLine{
			ProductID:   item.ID,
			Title:       item.Title,
			LicenseTier: e.License(item.ID),
			UnitPrice:   domain.FormatPrice(e.EffectivePrice(item)),
		})
	}

	q := Quote{
		Lines:    lines,
		Subtotal: domain.FormatPrice(e.Subtotal()),
		Discount: domain.FormatPrice(e.Discount()),
		Total:    domain.FormatPrice(e.Total()),
		Currency: domain.Currency,
	}
	if coupon, ok := e.Coupon(); ok {
		q.CouponCode = &coupon.Code
	}
	return q
}
