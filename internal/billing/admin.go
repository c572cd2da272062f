package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/models"
)

// BillUpdate carries the fields an admin may change. Nil fields are left untouched.
type BillUpdate struct {
	UserSubscriptionID *int64     `json:"user_subscription_id"`
	Amount             *float64   `json:"amount"`
	PaymentMethod      *string    `json:"payment_method"`
	PaymentDate        *time.Time `json:"payment_date"`
	DueDate            *time.Time `json:"due_date"`
	PaymentStatus      *string    `json:"payment_status"`
}

// assignments turns the non-nil fields into SET clauses. Column names are fixed here, never taken from input.
func (u BillUpdate) assignments() ([]string, []any, error) {
	var (
		sets []string
		args []any
	)
	if u.UserSubscriptionID != nil {
		sets, args = append(sets, "user_subscription_id = ?"), append(args, *u.UserSubscriptionID)
	}
	if u.Amount != nil {
		if *u.Amount < 0 {
			return nil, nil, apperr.Validation("amount must not be negative")
		}
		sets, args = append(sets, "amount = ?"), append(args, *u.Amount)
	}
	if u.PaymentMethod != nil {
		sets, args = append(sets, "payment_method = ?"), append(args, *u.PaymentMethod)
	}
	if u.PaymentDate != nil {
		sets, args = append(sets, "payment_date = ?"), append(args, *u.PaymentDate)
	}
	if u.DueDate != nil {
		sets, args = append(sets, "due_date = ?"), append(args, *u.DueDate)
	}
	if u.PaymentStatus != nil {
		status := strings.ToUpper(*u.PaymentStatus)
		if status != models.PaymentPending && status != models.PaymentCompleted {
			return nil, nil, apperr.Validation("payment_status must be PENDING or COMPLETED")
		}
		sets, args = append(sets, "payment_status = ?"), append(args, status)
	}
	return sets, args, nil
}

func (s *Service) ListBills(ctx context.Context) ([]models.Billing, error) {
	return s.listBills(ctx, `SELECT `+billColumns+` FROM billings b ORDER BY b.id DESC`)
}

func (s *Service) GetBill(ctx context.Context, id int64) (*models.Billing, error) {
	b, err := scanBill(s.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM billings b WHERE b.id = ?`, id), s.now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Bill not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query bill: %w", err)
	}
	return &b, nil
}

// UpdateBill applies a partial update. An update with no fields is rejected without touching the row.
func (s *Service) UpdateBill(ctx context.Context, id int64, u BillUpdate) (*models.Billing, error) {
	sets, args, err := u.assignments()
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, apperr.Validation("No valid fields provided")
	}

	if err := s.billExists(ctx, id); err != nil {
		return nil, err
	}

	query := "UPDATE billings SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, append(args, id)...); err != nil {
		return nil, fmt.Errorf("update bill: %w", err)
	}
	return s.GetBill(ctx, id)
}

func (s *Service) DeleteBill(ctx context.Context, id int64) error {
	if err := s.billExists(ctx, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM billings WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return nil
}

func (s *Service) billExists(ctx context.Context, id int64) error {
	var found int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM billings WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Bill not found")
	}
	if err != nil {
		return fmt.Errorf("query bill: %w", err)
	}
	return nil
}
