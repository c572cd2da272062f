package models

// Plan defines the model for the 'subscription_plans' table
type Plan struct {
	ID           int64   `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Price        float64 `json:"price" db:"price"`
	MaxDevices   int     `json:"max_devices" db:"max_devices"`
	HD           bool    `json:"hd" db:"hd"`
	UltraHD      bool    `json:"ultra_hd" db:"ultra_hd"`
	DurationDays int     `json:"duration_days" db:"duration_days"`
}
