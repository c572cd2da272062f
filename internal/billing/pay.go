package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/database"
	"github.com/01moynul/cinestream-golang/internal/metrics"
	"github.com/01moynul/cinestream-golang/internal/models"
)

// PayResult describes what a payment did.
type PayResult struct {
	Billing      models.Billing          `json:"billing"`
	Subscription models.UserSubscription `json:"subscription"`
	Reanchored   bool                    `json:"reanchored"`
	AlreadyPaid  bool                    `json:"already_paid"`
}

// Pay marks a bill COMPLETED on behalf of its owner. When the bill's period has already started,
// the period is moved to begin on the payment day. The bill row is locked for the whole operation,
// so concurrent payments of the same bill run one after the other and the second one is a no-op.
func (s *Service) Pay(ctx context.Context, billingID, payerID int64, method string) (*PayResult, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, apperr.Validation("payment_method is required")
	}

	now := s.now()
	var result PayResult

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Lock the bill together with its period and plan ---
		var (
			b            models.Billing
			sub          models.UserSubscription
			durationDays int
		)
		err := tx.QueryRowContext(ctx, `
			SELECT b.id, b.user_subscription_id, b.amount, b.payment_method, b.payment_date, b.due_date, b.payment_status,
			       us.id, us.user_id, us.plan_id, us.start_date, us.end_date, sp.duration_days
			FROM billings b
			JOIN user_subscriptions us ON us.id = b.user_subscription_id
			JOIN subscription_plans sp ON sp.id = us.plan_id
			WHERE b.id = ?
			FOR UPDATE`, billingID).Scan(
			&b.ID, &b.UserSubscriptionID, &b.Amount, &b.PaymentMethod, &b.PaymentDate, &b.DueDate, &b.PaymentStatus,
			&sub.ID, &sub.UserID, &sub.PlanID, &sub.StartDate, &sub.EndDate, &durationDays,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Bill not found")
		}
		if err != nil {
			return fmt.Errorf("lock bill: %w", err)
		}

		// 2. --- Ownership ---
		if sub.UserID != payerID {
			return apperr.Forbidden("You do not have permission to pay this bill")
		}

		// 3. --- Already settled: nothing to do ---
		if b.PaymentStatus == models.PaymentCompleted {
			result = PayResult{Billing: b, Subscription: sub, AlreadyPaid: true}
			return nil
		}

		// 4. --- Complete the bill ---
		_, err = tx.ExecContext(ctx,
			"UPDATE billings SET payment_status = ?, payment_method = ?, payment_date = ? WHERE id = ?",
			models.PaymentCompleted, method, now, b.ID)
		if err != nil {
			return fmt.Errorf("complete bill: %w", err)
		}
		b.PaymentStatus = models.PaymentCompleted
		b.PaymentMethod = &method
		b.PaymentDate = &now

		// 5. --- Date rollover ---
		start, end, changed := Reanchor(sub.StartDate, now, durationDays)
		if changed {
			_, err = tx.ExecContext(ctx,
				"UPDATE user_subscriptions SET start_date = ?, end_date = ? WHERE id = ?",
				dateOnly(start), dateOnly(end), sub.ID)
			if err != nil {
				return fmt.Errorf("reanchor subscription: %w", err)
			}
			sub.StartDate, sub.EndDate = start, end
		}

		result = PayResult{Billing: b, Subscription: sub, Reanchored: changed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyPaid {
		metrics.BillingEvents.WithLabelValues("pay").Inc()
		if result.Reanchored {
			metrics.BillingEvents.WithLabelValues("reanchor").Inc()
		}
	}
	return &result, nil
}

const billColumns = `b.id, b.user_subscription_id, b.amount, b.payment_method, b.payment_date, b.due_date, b.payment_status`

func scanBill(row rowScanner, now time.Time) (models.Billing, error) {
	var b models.Billing
	err := row.Scan(&b.ID, &b.UserSubscriptionID, &b.Amount, &b.PaymentMethod, &b.PaymentDate, &b.DueDate, &b.PaymentStatus)
	b.Overdue = b.IsOverdue(now)
	return b, err
}

func (s *Service) listBills(ctx context.Context, query string, args ...any) ([]models.Billing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	now := s.now()
	bills := []models.Billing{}
	for rows.Next() {
		b, err := scanBill(rows, now)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// UserBills lists the caller's own bills, most recent due date first.
func (s *Service) UserBills(ctx context.Context, userID int64) ([]models.Billing, error) {
	return s.listBills(ctx, `
		SELECT `+billColumns+`
		FROM billings b
		JOIN user_subscriptions us ON us.id = b.user_subscription_id
		WHERE us.user_id = ?
		ORDER BY b.due_date DESC, b.id DESC`, userID)
}
