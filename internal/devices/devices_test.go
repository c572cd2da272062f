package devices

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mssola/useragent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/cinestream-golang/internal/apperr"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		ua       string
		wantType string
	}{
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", TypeMobile},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1", TypeTablet},
		{"android tablet", "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", TypeTablet},
		{"smart tv", "Mozilla/5.0 (SMART-TV; Linux; Tizen 6.0) AppleWebKit/537.36 (KHTML, like Gecko) SamsungBrowser/4.0 Chrome/76.0.3809.146 TV Safari/537.36", TypeTV},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", TypeDesktop},
		{"bot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", TypeBot},
		{"empty", "", TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Detect(tt.ua)
			assert.Equal(t, tt.wantType, d.Type)
			assert.NotEmpty(t, d.Name)
		})
	}
}

func TestDetectNamesBrowser(t *testing.T) {
	d := Detect("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	assert.Contains(t, d.Name, "Chrome on ")
	assert.Contains(t, d.Name, "Windows")
}

func TestDeviceNameTruncatesOnRunes(t *testing.T) {
	name := deviceName(strings.Repeat("日", 200), useragent.New(""))

	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, maxNameLen, utf8.RuneCountInString(name))
}

func TestRegisterUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE last_login = VALUES(last_login)")).
		WithArgs(int64(7), TypeUnknown, "Unknown device", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	d, err := Register(context.Background(), db, 7, "", now)

	require.NoError(t, err)
	assert.Equal(t, TypeUnknown, d.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveForeignDevice(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM devices WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(99))

	err = Remove(context.Background(), db, 7, 3)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
