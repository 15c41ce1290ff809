// Package apiclient talks to the storefront backend REST API. It implements
// the remote collaborator interfaces consumed by the wishlist, pricing and
// checkout components.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
)

// ErrConnectivity hides raw transport errors behind one user-safe message.
var ErrConnectivity = errors.New("could not reach the store, please try again")

// RemoteError is a structured rejection from the backend. Message is the
// server's wording and is surfaced to users verbatim.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	session domain.Session
	http    *http.Client
	logger  *zap.Logger
}

// New builds a client bound to one session. The principal is passed in
// explicitly; a guest session simply sends no Authorization header.
func New(baseURL string, session domain.Session, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		session: session,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// WithSession returns a client bound to the given session, sharing the
// underlying transport. Components that serve many principals hold one base
// client and rebind per call.
func (c *Client) WithSession(session domain.Session) *Client {
	cp := *c
	cp.session = session
	return &cp
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", zap.String("path", path), zap.Error(err))
		return ErrConnectivity
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &RemoteError{StatusCode: resp.StatusCode, Message: "request failed"}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		message := env.Message
		if message == "" {
			message = "request failed"
		}
		return &RemoteError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// Fetch implements wishlist.Remote.
func (c *Client) Fetch(ctx context.Context) ([]domain.WishlistItem, error) {
	var items []domain.WishlistItem
	if err := c.do(ctx, http.MethodGet, "/wishlist", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Add implements wishlist.Remote. The returned item carries the
// server-assigned wishlist-item ID. Any client-local placeholder ID is
// stripped from the outgoing body; the server owns identity for creates.
func (c *Client) Add(ctx context.Context, item domain.WishlistItem) (domain.WishlistItem, error) {
	item.RemoteID = ""
	var stored domain.WishlistItem
	if err := c.do(ctx, http.MethodPost, "/wishlist", item, &stored); err != nil {
		return domain.WishlistItem{}, err
	}
	return stored, nil
}

// Remove implements wishlist.Remote.
func (c *Client) Remove(ctx context.Context, key string) error {
	return c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(key), nil, nil)
}

// Clear implements wishlist.Remote.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/wishlist", nil, nil)
}

type validateCouponRequest struct {
	Code       string `json:"code"`
	OrderTotal string `json:"orderTotal"`
}

type validateCouponResponse struct {
	Valid   bool          `json:"valid"`
	Coupon  domain.Coupon `json:"coupon"`
	Message string        `json:"message"`
}

// Validate implements pricing.CouponValidator. An invalid coupon is a
// RemoteError carrying the server's rejection message.
func (c *Client) Validate(ctx context.Context, code string, orderTotal decimal.Decimal) (domain.Coupon, error) {
	var resp validateCouponResponse
	err := c.do(ctx, http.MethodPost, "/coupons/validate", validateCouponRequest{
		Code:       code,
		OrderTotal: domain.FormatPrice(orderTotal),
	}, &resp)
	if err != nil {
		return domain.Coupon{}, err
	}
	if !resp.Valid {
		message := resp.Message
		if message == "" {
			message = "coupon is not valid"
		}
		return domain.Coupon{}, &RemoteError{StatusCode: http.StatusUnprocessableEntity, Message: message}
	}
	return resp.Coupon, nil
}

type createOrderResponse struct {
	OrderID string `json:"orderId"`
}

// CreateOrder posts the order payload unmodified and returns the order ID.
func (c *Client) CreateOrder(ctx context.Context, order domain.Order) (string, error) {
	var resp createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", order, &resp); err != nil {
		return "", err
	}
	return resp.OrderID, nil
}

type createPaymentOrderRequest struct {
	OrderID  string `json:"orderId"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// CreatePaymentOrder opens a gateway order for an accepted storefront order.
func (c *Client) CreatePaymentOrder(ctx context.Context, orderID string, amount decimal.Decimal) (domain.PaymentOrder, error) {
	var resp domain.PaymentOrder
	err := c.do(ctx, http.MethodPost, "/payment/create-order", createPaymentOrderRequest{
		OrderID:  orderID,
		Amount:   domain.FormatPrice(amount),
		Currency: domain.Currency,
	}, &resp)
	if err != nil {
		return domain.PaymentOrder{}, err
	}
	return resp, nil
}

type verifyPaymentResponse struct {
	Verified bool `json:"verified"`
}

// VerifyPayment forwards the gateway confirmation tokens unmodified.
func (c *Client) VerifyPayment(ctx context.Context, confirmation domain.PaymentConfirmation) error {
	var resp verifyPaymentResponse
	if err := c.do(ctx, http.MethodPost, "/payment/verify", confirmation, &resp); err != nil {
		return err
	}
	if !resp.Verified {
		return &RemoteError{StatusCode: http.StatusUnprocessableEntity, Message: "payment could not be verified"}
	}
	return nil
}
