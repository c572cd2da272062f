// Package devices turns a login's User-Agent into a device record.
package devices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mssola/useragent"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/database"
	"github.com/01moynul/cinestream-golang/internal/models"
)

const (
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
	TypeTV      = "tv"
	TypeDesktop = "desktop"
	TypeBot     = "bot"
	TypeUnknown = "unknown"

	maxNameLen = 128
)

var tvMarkers = []string{"smart-tv", "smarttv", "googletv", "appletv", "hbbtv", "crkey", "tizen", "webos", "roku", "bravia"}

type Device struct {
	Type string
	Name string
}

// Detect classifies a User-Agent header.
func Detect(uaString string) Device {
	uaString = strings.TrimSpace(uaString)
	if uaString == "" {
		return Device{Type: TypeUnknown, Name: "Unknown device"}
	}

	ua := useragent.New(uaString)
	lower := strings.ToLower(uaString)
	browser, _ := ua.Browser()

	d := Device{Name: deviceName(browser, ua)}
	switch {
	case ua.Bot():
		d.Type = TypeBot
	case containsAny(lower, tvMarkers):
		d.Type = TypeTV
	case strings.Contains(lower, "ipad") || (strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")):
		d.Type = TypeTablet
	case ua.Mobile():
		d.Type = TypeMobile
	default:
		d.Type = TypeDesktop
	}
	return d
}

func deviceName(browser string, ua *useragent.UserAgent) string {
	os := ua.OS()
	// iOS reports "CPU iPhone OS 17_0 like Mac OS X"; the platform reads better.
	if os == "" || strings.HasPrefix(os, "CPU") {
		os = ua.Platform()
	}
	if browser == "" {
		browser = "Unknown browser"
	}

	name := browser
	if os != "" {
		name = fmt.Sprintf("%s on %s", browser, os)
	}
	if r := []rune(name); len(r) > maxNameLen {
		name = string(r[:maxNameLen])
	}
	return name
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Register upserts the device for the user and bumps its last_login.
func Register(ctx context.Context, q database.Querier, userID int64, uaString string, now time.Time) (Device, error) {
	d := Detect(uaString)
	_, err := q.ExecContext(ctx, `
		INSERT INTO devices (user_id, device_type, device_name, last_login)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE last_login = VALUES(last_login)`,
		userID, d.Type, d.Name, now)
	if err != nil {
		return d, fmt.Errorf("register device: %w", err)
	}
	return d, nil
}

func List(ctx context.Context, q database.Querier, userID int64) ([]models.Device, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, device_type, device_name, last_login
		FROM devices WHERE user_id = ?
		ORDER BY last_login DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	list := []models.Device{}
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.DeviceType, &d.DeviceName, &d.LastLogin); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Remove deletes one of the user's devices. Devices of other users are reported as not found.
func Remove(ctx context.Context, q database.Querier, userID, deviceID int64) error {
	var owner int64
	err := q.QueryRowContext(ctx, "SELECT user_id FROM devices WHERE id = ?", deviceID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return apperr.NotFound("Device not found")
	}
	if err != nil {
		return fmt.Errorf("query device: %w", err)
	}
	if _, err := q.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", deviceID); err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	return nil
}
