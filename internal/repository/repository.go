package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
)

var (
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	ErrSessionNotFound        = errors.New("checkout session not found")
)

// CheckoutSession is the locally journaled state of one checkout attempt.
// OrderPayload holds the order exactly as it was handed to the collaborator.
type CheckoutSession struct {
	ID             string
	UserID         string
	IdempotencyKey string
	Status         domain.CheckoutStatus
	OrderPayload   []byte
	TotalAmount    string
	OrderID        sql.NullString
	GatewayOrderID sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OutboxEvent is a pending order notification for the kafka publisher.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// RepoInterface defines the local store operations. Consumers define this
// interface, not the sqlite implementation.
type RepoInterface interface {
	CreateCheckoutSession(ctx context.Context, session *CheckoutSession) error
	GetSessionByIdempotencyKey(ctx context.Context, key string) (*CheckoutSession, error)
	GetSessionByID(ctx context.Context, id string) (*CheckoutSession, error)
	UpdateSessionStatus(ctx context.Context, id string, status domain.CheckoutStatus) error
	SetPaymentOrder(ctx context.Context, id, orderID, gatewayOrderID string) error
	CompleteSession(ctx context.Context, id string, eventPayload []byte) error
	GetStuckSessions(ctx context.Context) ([]*CheckoutSession, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	Close() error
	RunMigrations(migrationsPath string) error
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) CreateCheckoutSession(ctx context.Context, session *CheckoutSession) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkout_sessions
			(id, user_id, idempotency_key, status, order_payload, total_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.IdempotencyKey, session.Status.String(),
		session.OrderPayload, session.TotalAmount, now, now)
	if err != nil {
		return fmt.Errorf("create checkout session: %w", err)
	}
	return nil
}

func (r *Repository) GetSessionByIdempotencyKey(ctx context.Context, key string) (*CheckoutSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, idempotency_key, status, order_payload, total_amount, order_id, gateway_order_id, created_at, updated_at
		FROM checkout_sessions
		WHERE idempotency_key = ?`, key)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdempotencyKeyNotFound
	}
	return s, err
}

func (r *Repository) GetSessionByID(ctx context.Context, id string) (*CheckoutSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, idempotency_key, status, order_payload, total_amount, order_id, gateway_order_id, created_at, updated_at
		FROM checkout_sessions
		WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

func scanSession(row *sql.Row) (*CheckoutSession, error) {
	var s CheckoutSession
	var status string
	err := row.Scan(&s.ID, &s.UserID, &s.IdempotencyKey, &status, &s.OrderPayload,
		&s.TotalAmount, &s.OrderID, &s.GatewayOrderID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	s.Status = domain.CheckoutStatus(status)
	return &s, nil
}

func (r *Repository) UpdateSessionStatus(ctx context.Context, id string, status domain.CheckoutStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE checkout_sessions SET status = ?, updated_at = ? WHERE id = ?`,
		status.String(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return requireRow(res)
}

// SetPaymentOrder records the collaborator order and gateway order ids and
// moves the session to PAYMENT_PENDING.
func (r *Repository) SetPaymentOrder(ctx context.Context, id, orderID, gatewayOrderID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE checkout_sessions SET order_id = ?, gateway_order_id = ?, status = ?, updated_at = ? WHERE id = ?`,
		orderID, gatewayOrderID, domain.CheckoutStatusPaymentPending.String(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set payment order: %w", err)
	}
	return requireRow(res)
}

// CompleteSession marks the session COMPLETED and enqueues the outbox event
// in the same transaction, so a completed order can never miss its event.
func (r *Repository) CompleteSession(ctx context.Context, id string, eventPayload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete session: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE checkout_sessions SET status = ?, updated_at = ? WHERE id = ?`,
		domain.CheckoutStatusCompleted.String(), now, id)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
		VALUES (?, ?, ?, ?)`,
		id, "order.completed", eventPayload, now)
	if err != nil {
		return fmt.Errorf("enqueue outbox event: %w", err)
	}

	return tx.Commit()
}

// GetStuckSessions finds sessions whose payment was verified but whose outbox
// event never made it in, typically after a crash between the two writes.
func (r *Repository) GetStuckSessions(ctx context.Context) ([]*CheckoutSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, idempotency_key, status, order_payload, total_amount, order_id, gateway_order_id, created_at, updated_at
		FROM checkout_sessions s
		WHERE status = ?
		  AND NOT EXISTS (SELECT 1 FROM outbox_events e WHERE e.aggregate_id = s.id)`,
		domain.CheckoutStatusPaymentCompleted.String())
	if err != nil {
		return nil, fmt.Errorf("get stuck sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*CheckoutSession
	for rows.Next() {
		var s CheckoutSession
		var status string
		if err := rows.Scan(&s.ID, &s.UserID, &s.IdempotencyKey, &status, &s.OrderPayload,
			&s.TotalAmount, &s.OrderID, &s.GatewayOrderID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stuck session: %w", err)
		}
		s.Status = domain.CheckoutStatus(status)
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE outbox_events SET processed_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
