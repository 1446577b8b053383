package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"cinepay/internal/domain"
	"cinepay/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PaymentStore is a PostgreSQL implementation of repository.PaymentStore,
// used when the gateway is deployed with a durable store. Booking, account
// and promo snapshots are kept as JSON columns; the payment method is kept
// as its selector and rebuilt through the resolver on read.
type PaymentStore struct {
	q        Querier
	resolver *domain.MethodResolver
}

// NewPaymentStore creates a new PostgreSQL payment store.
func NewPaymentStore(db *sql.DB, resolver *domain.MethodResolver) *PaymentStore {
	return &PaymentStore{q: db, resolver: resolver}
}

const paymentColumns = `invoice_number, kind, total_price, method_selector, status, owner_email, booking, account, promo`

// Put persists a new payment.
func (s *PaymentStore) Put(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	args, err := encodeArgs(payment)
	if err != nil {
		return err
	}

	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicateInvoice
		}
		return err
	}
	return nil
}

// Upsert persists a payment, replacing any existing row.
func (s *PaymentStore) Upsert(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (invoice_number) DO UPDATE SET
			kind = EXCLUDED.kind,
			total_price = EXCLUDED.total_price,
			method_selector = EXCLUDED.method_selector,
			status = EXCLUDED.status,
			owner_email = EXCLUDED.owner_email,
			booking = EXCLUDED.booking,
			account = EXCLUDED.account,
			promo = EXCLUDED.promo
	`

	args, err := encodeArgs(payment)
	if err != nil {
		return err
	}

	_, err = s.q.ExecContext(ctx, query, args...)
	return err
}

// Get retrieves a payment by invoice number.
func (s *PaymentStore) Get(ctx context.Context, invoiceNumber string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_number = $1`

	payment, err := s.scanPayment(s.q.QueryRowContext(ctx, query, invoiceNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// Update replaces an existing payment.
func (s *PaymentStore) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments SET
			total_price = $2, status = $3, booking = $4, promo = $5
		WHERE invoice_number = $1
	`

	booking, promo, err := encodeSnapshots(payment)
	if err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, query,
		payment.InvoiceNumber,
		payment.TotalPrice,
		payment.Status,
		booking,
		promo,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateIfPending replaces an existing payment only while the stored row is
// still PENDING. The status predicate makes the transition atomic on the
// database side.
func (s *PaymentStore) UpdateIfPending(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments SET
			total_price = $2, status = $3, booking = $4, promo = $5
		WHERE invoice_number = $1 AND status = 'PENDING'
	`

	booking, promo, err := encodeSnapshots(payment)
	if err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, query,
		payment.InvoiceNumber,
		payment.TotalPrice,
		payment.Status,
		booking,
		promo,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, err := s.Get(ctx, payment.InvoiceNumber); err != nil {
			return err
		}
		return repository.ErrAlreadySettled
	}
	return nil
}

// Remove deletes a payment by invoice number. No-op if absent.
func (s *PaymentStore) Remove(ctx context.Context, invoiceNumber string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM payments WHERE invoice_number = $1`, invoiceNumber)
	return err
}

// ListAll returns every payment in the store.
func (s *PaymentStore) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY invoice_number`
	return s.queryPayments(ctx, query)
}

// ListOngoing returns PENDING payments owned by the given email.
func (s *PaymentStore) ListOngoing(ctx context.Context, email string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE status = 'PENDING' AND owner_email = $1
		ORDER BY invoice_number
	`
	return s.queryPayments(ctx, query, email)
}

// ListHistory returns non-PENDING payments owned by the given email.
func (s *PaymentStore) ListHistory(ctx context.Context, email string) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE status <> 'PENDING' AND owner_email = $1
		ORDER BY invoice_number
	`
	return s.queryPayments(ctx, query, email)
}

func (s *PaymentStore) queryPayments(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Payment, 0)
	for rows.Next() {
		payment, err := s.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, payment)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PaymentStore) scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		payment    domain.Payment
		selector   string
		ownerEmail string
		booking    []byte
		account    []byte
		promo      []byte
	)

	if err := row.Scan(
		&payment.InvoiceNumber,
		&payment.Kind,
		&payment.TotalPrice,
		&selector,
		&payment.Status,
		&ownerEmail,
		&booking,
		&account,
		&promo,
	); err != nil {
		return nil, err
	}

	method, err := s.resolver.Resolve(payment.InvoiceNumber, selector)
	if err != nil {
		return nil, fmt.Errorf("rebuild payment method for %s: %w", payment.InvoiceNumber, err)
	}
	payment.Method = method

	if booking != nil {
		payment.Booking = &domain.Booking{}
		if err := json.Unmarshal(booking, payment.Booking); err != nil {
			return nil, err
		}
	}
	if account != nil {
		payment.User = &domain.Account{}
		if err := json.Unmarshal(account, payment.User); err != nil {
			return nil, err
		}
	}
	if promo != nil {
		payment.Promo = &domain.Promo{}
		if err := json.Unmarshal(promo, payment.Promo); err != nil {
			return nil, err
		}
	}
	return &payment, nil
}

func encodeArgs(payment *domain.Payment) ([]any, error) {
	booking, promo, err := encodeSnapshots(payment)
	if err != nil {
		return nil, err
	}

	var account []byte
	if payment.User != nil {
		if account, err = json.Marshal(payment.User); err != nil {
			return nil, err
		}
	}

	return []any{
		payment.InvoiceNumber,
		payment.Kind,
		payment.TotalPrice,
		payment.Method.Selector(),
		payment.Status,
		payment.OwnerEmail(),
		booking,
		account,
		promo,
	}, nil
}

func encodeSnapshots(payment *domain.Payment) (booking, promo []byte, err error) {
	if payment.Booking != nil {
		if booking, err = json.Marshal(payment.Booking); err != nil {
			return nil, nil, err
		}
	}
	if payment.Promo != nil {
		if promo, err = json.Marshal(payment.Promo); err != nil {
			return nil, nil, err
		}
	}
	return booking, promo, nil
}
