package models

import "time"

// Device defines the struct for the 'devices' table, registered on login.
type Device struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	DeviceType string    `json:"device_type" db:"device_type"`
	DeviceName string    `json:"device_name" db:"device_name"`
	LastLogin  time.Time `json:"last_login" db:"last_login"`
}
