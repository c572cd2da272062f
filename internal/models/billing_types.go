package models

import "time"

const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
)

// Billing defines the model for the 'billings' table. One row per UserSubscription.
type Billing struct {
	ID                 int64      `json:"id" db:"id"`
	UserSubscriptionID int64      `json:"user_subscription_id" db:"user_subscription_id"`
	Amount             float64    `json:"amount" db:"amount"`
	PaymentMethod      *string    `json:"payment_method" db:"payment_method"`
	PaymentDate        *time.Time `json:"payment_date" db:"payment_date"`
	DueDate            time.Time  `json:"due_date" db:"due_date"`
	PaymentStatus      string     `json:"payment_status" db:"payment_status"`

	// Computed at read time, not stored.
	Overdue bool `json:"overdue" db:"-"`
}

// IsOverdue reports whether a pending bill is past its due date.
func (b *Billing) IsOverdue(now time.Time) bool {
	return b.PaymentStatus == PaymentPending && now.After(b.DueDate)
}

type PayInput struct {
	BillingID     int64  `json:"billing_id" binding:"required,gt=0"`
	PaymentMethod string `json:"payment_method" binding:"required,max=64"`
}
