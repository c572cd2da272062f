package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/models"
)

const revenueMonths = 12

type MonthlyRevenue struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}

type AdminStats struct {
	Users               int64            `json:"users"`
	Movies              int64            `json:"movies"`
	ActiveSubscriptions int64            `json:"active_subscriptions"`
	PendingBills        int64            `json:"pending_bills"`
	Revenue             float64          `json:"revenue"`
	RevenueByMonth      []MonthlyRevenue `json:"revenue_by_month"`
}

// revenueWindow returns the first day of the oldest month shown and the month labels, oldest first.
func revenueWindow(now time.Time, months int) (time.Time, []string) {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	labels := make([]string, months)
	for i := range labels {
		labels[i] = first.AddDate(0, i, 0).Format("2006-01")
	}
	return first, labels
}

// GetAdminStats returns KPI data for the admin dashboard
// GET /api/v1/admin/stats
func (h *Handlers) GetAdminStats(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.now()
	today := now.UTC().Format(time.DateOnly)
	stats := AdminStats{}

	// 1. Simple totals
	counts := []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&stats.Users, "SELECT COUNT(*) FROM users", nil},
		{&stats.Movies, "SELECT COUNT(*) FROM movies", nil},
		{&stats.ActiveSubscriptions, `
			SELECT COUNT(*)
			FROM user_subscriptions us
			JOIN billings b ON b.user_subscription_id = us.id
			WHERE b.payment_status = ? AND ? BETWEEN us.start_date AND us.end_date`,
			[]any{models.PaymentCompleted, today}},
		{&stats.PendingBills, "SELECT COUNT(*) FROM billings WHERE payment_status = ?", []any{models.PaymentPending}},
	}
	for _, q := range counts {
		if err := h.DB.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			h.fail(c, fmt.Errorf("admin stats: %w", err))
			return
		}
	}

	// 2. Lifetime revenue
	// COALESCE so an empty table gives 0 instead of NULL
	err := h.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM billings WHERE payment_status = ?", models.PaymentCompleted).
		Scan(&stats.Revenue)
	if err != nil {
		h.fail(c, fmt.Errorf("admin stats revenue: %w", err))
		return
	}

	// 3. Revenue per month, with empty months filled in
	since, labels := revenueWindow(now, revenueMonths)
	rows, err := h.DB.QueryContext(ctx, `
		SELECT DATE_FORMAT(payment_date, '%Y-%m') AS month, SUM(amount)
		FROM billings
		WHERE payment_status = ? AND payment_date >= ?
		GROUP BY month
		ORDER BY month`,
		models.PaymentCompleted, since)
	if err != nil {
		h.fail(c, fmt.Errorf("admin stats monthly: %w", err))
		return
	}
	defer rows.Close()

	byMonth := make(map[string]float64, revenueMonths)
	for rows.Next() {
		var (
			month string
			total float64
		)
		if err := rows.Scan(&month, &total); err != nil {
			h.fail(c, fmt.Errorf("admin stats monthly scan: %w", err))
			return
		}
		byMonth[month] = total
	}
	if err := rows.Err(); err != nil {
		h.fail(c, fmt.Errorf("admin stats monthly: %w", err))
		return
	}

	stats.RevenueByMonth = make([]MonthlyRevenue, len(labels))
	for i, m := range labels {
		stats.RevenueByMonth[i] = MonthlyRevenue{Month: m, Total: byMonth[m]}
	}

	c.JSON(http.StatusOK, stats)
}
