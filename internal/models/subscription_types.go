package models

import "time"

// UserSubscription defines the model for the 'user_subscriptions' table.
// StartDate and EndDate are calendar days (DATE columns), both inclusive.
type UserSubscription struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	PlanID    int64     `json:"plan_id" db:"plan_id"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
}

// SubscriptionView is a subscription joined with its plan and billing row.
type SubscriptionView struct {
	UserSubscription
	PlanName      string  `json:"plan_name"`
	Price         float64 `json:"price"`
	DurationDays  int     `json:"duration_days"`
	MaxDevices    int     `json:"max_devices"`
	HD            bool    `json:"hd"`
	UltraHD       bool    `json:"ultra_hd"`
	BillingID     int64   `json:"billing_id"`
	PaymentStatus string  `json:"payment_status"`
}
