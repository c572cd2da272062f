// Package billing resolves which plans a user is entitled to and runs the bill lifecycle
// (PENDING to COMPLETED) including the date rollover on payment.
package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/database"
	"github.com/01moynul/cinestream-golang/internal/metrics"
	"github.com/01moynul/cinestream-golang/internal/models"
)

type Service struct {
	db  *sql.DB
	now func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, now: time.Now}
}

const viewColumns = `
	us.id, us.user_id, us.plan_id, us.start_date, us.end_date,
	sp.name, sp.price, sp.duration_days, sp.max_devices, sp.hd, sp.ultra_hd,
	b.id, b.payment_status`

const viewJoins = `
	FROM user_subscriptions us
	JOIN billings b ON b.user_subscription_id = us.id
	JOIN subscription_plans sp ON sp.id = us.plan_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanView(row rowScanner) (models.SubscriptionView, error) {
	var v models.SubscriptionView
	err := row.Scan(
		&v.ID, &v.UserID, &v.PlanID, &v.StartDate, &v.EndDate,
		&v.PlanName, &v.Price, &v.DurationDays, &v.MaxDevices, &v.HD, &v.UltraHD,
		&v.BillingID, &v.PaymentStatus,
	)
	return v, err
}

// CurrentActivePlans returns every paid subscription period covering asOf. An empty slice is a valid answer.
func (s *Service) CurrentActivePlans(ctx context.Context, userID int64, asOf time.Time) ([]models.SubscriptionView, error) {
	query := `SELECT` + viewColumns + viewJoins + `
		WHERE us.user_id = ? AND b.payment_status = 'COMPLETED'
		  AND ? BETWEEN us.start_date AND us.end_date
		ORDER BY us.end_date`

	rows, err := s.db.QueryContext(ctx, query, userID, dateOnly(asOf))
	if err != nil {
		return nil, fmt.Errorf("query active plans: %w", err)
	}
	defer rows.Close()

	plans := []models.SubscriptionView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan active plan: %w", err)
		}
		plans = append(plans, v)
	}
	return plans, rows.Err()
}

// HasActivePlan is the entitlement check used before streaming.
func (s *Service) HasActivePlan(ctx context.Context, userID int64) (bool, error) {
	plans, err := s.CurrentActivePlans(ctx, userID, s.now())
	if err != nil {
		return false, err
	}
	return len(plans) > 0, nil
}

// LastActivePlan returns the paid subscription with the latest end date that has not yet ended, or nil.
func (s *Service) LastActivePlan(ctx context.Context, userID int64, asOf time.Time) (*models.SubscriptionView, error) {
	return lastActivePlan(ctx, s.db, userID, asOf, false)
}

func lastActivePlan(ctx context.Context, q database.Querier, userID int64, asOf time.Time, lock bool) (*models.SubscriptionView, error) {
	query := `SELECT` + viewColumns + viewJoins + `
		WHERE us.user_id = ? AND b.payment_status = 'COMPLETED' AND us.end_date >= ?
		ORDER BY us.end_date DESC
		LIMIT 1`
	if lock {
		query += " FOR UPDATE"
	}

	v, err := scanView(q.QueryRowContext(ctx, query, userID, dateOnly(asOf)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last active plan: %w", err)
	}
	return &v, nil
}

// Subscriptions lists the user's whole timeline, newest first.
func (s *Service) Subscriptions(ctx context.Context, userID int64) ([]models.SubscriptionView, error) {
	query := `SELECT` + viewColumns + viewJoins + `
		WHERE us.user_id = ?
		ORDER BY us.start_date DESC, us.id DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []models.SubscriptionView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, v)
	}
	return subs, rows.Err()
}

// Plans returns the public plan catalogue, cheapest first.
func (s *Service) Plans(ctx context.Context) ([]models.Plan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, max_devices, hd, ultra_hd, duration_days
		FROM subscription_plans
		ORDER BY price, id`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := []models.Plan{}
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.MaxDevices, &p.HD, &p.UltraHD, &p.DurationDays); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Enroll creates a new subscription period and its pending bill in one transaction.
// If the user still holds a paid period, the new one is queued right after it.
func (s *Service) Enroll(ctx context.Context, userID, planID int64) (*models.SubscriptionView, error) {
	now := s.now()
	var view *models.SubscriptionView

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Serialize enrollments for this user ---
		var lockedID int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ? FOR UPDATE", userID).Scan(&lockedID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("User not found")
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		// 2. --- Plan lookup ---
		var plan models.Plan
		err = tx.QueryRowContext(ctx, `
			SELECT id, name, price, max_devices, hd, ultra_hd, duration_days
			FROM subscription_plans WHERE id = ?`, planID).
			Scan(&plan.ID, &plan.Name, &plan.Price, &plan.MaxDevices, &plan.HD, &plan.UltraHD, &plan.DurationDays)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Subscription plan not found")
		}
		if err != nil {
			return fmt.Errorf("query plan: %w", err)
		}

		// 3. --- Queue after the last paid period, if any ---
		last, err := lastActivePlan(ctx, tx, userID, now, true)
		if err != nil {
			return err
		}
		var lastEnd *time.Time
		if last != nil {
			lastEnd = &last.EndDate
		}
		start, end := NextPeriod(lastEnd, now, plan.DurationDays)

		// 4. --- Subscription row ---
		res, err := tx.ExecContext(ctx,
			"INSERT INTO user_subscriptions (user_id, plan_id, start_date, end_date) VALUES (?, ?, ?, ?)",
			userID, plan.ID, dateOnly(start), dateOnly(end))
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
		subID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("subscription id: %w", err)
		}

		// 5. --- Pending bill ---
		res, err = tx.ExecContext(ctx,
			"INSERT INTO billings (user_subscription_id, amount, due_date, payment_status) VALUES (?, ?, ?, ?)",
			subID, plan.Price, now.Add(BillingGracePeriod), models.PaymentPending)
		if err != nil {
			return fmt.Errorf("insert billing: %w", err)
		}
		billID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("billing id: %w", err)
		}

		view = &models.SubscriptionView{
			UserSubscription: models.UserSubscription{
				ID:        subID,
				UserID:    userID,
				PlanID:    plan.ID,
				StartDate: start,
				EndDate:   end,
			},
			PlanName:      plan.Name,
			Price:         plan.Price,
			DurationDays:  plan.DurationDays,
			MaxDevices:    plan.MaxDevices,
			HD:            plan.HD,
			UltraHD:       plan.UltraHD,
			BillingID:     billID,
			PaymentStatus: models.PaymentPending,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BillingEvents.WithLabelValues("enroll").Inc()
	return view, nil
}

// ActiveSubscriberCount counts distinct users with a paid period covering today.
func (s *Service) ActiveSubscriberCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT us.user_id)
		FROM user_subscriptions us
		JOIN billings b ON b.user_subscription_id = us.id
		WHERE b.payment_status = 'COMPLETED' AND ? BETWEEN us.start_date AND us.end_date`,
		dateOnly(s.now())).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active subscribers: %w", err)
	}
	return n, nil
}
