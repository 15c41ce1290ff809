package domain

// OrderItem is one line of an outgoing order. UnitPrice already includes the
// license multiplier and is rendered to cents; the payment collaborator never
// sees raw catalog prices.
type OrderItem struct {
	ProductID   string      `json:"productId"`
	Title       string      `json:"title"`
	LicenseTier LicenseTier `json:"licenseTier"`
	UnitPrice   string      `json:"price"`
}

// Order is the payload posted to the orders collaborator. It is handed over
// unmodified after creation.
type Order struct {
	OrderItems     []OrderItem `json:"orderItems"`
	PaymentMethod  string      `json:"paymentMethod"`
	TotalPrice     string      `json:"totalPrice"`
	DiscountAmount string      `json:"discountAmount"`
	CouponCode     *string     `json:"couponCode"`
}

// PaymentOrder is returned by the payment collaborator when a gateway order
// is opened for an accepted storefront order.
type PaymentOrder struct {
	OrderID   string `json:"orderId"`
	GatewayID string `json:"gatewayOrderId"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// PaymentConfirmation carries the gateway callback tokens. They are forwarded
// verbatim to the verify endpoint.
type PaymentConfirmation struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}
