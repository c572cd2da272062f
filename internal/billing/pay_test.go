package billing

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/models"
)

var payCols = []string{
	"id", "user_subscription_id", "amount", "payment_method", "payment_date", "due_date", "payment_status",
	"sid", "user_id", "plan_id", "start_date", "end_date", "duration_days",
}

func expectLockedBill(mock sqlmock.Sqlmock, billID, ownerID int64, status string, start, end time.Time) {
	mock.ExpectQuery(q("WHERE b.id = ? FOR UPDATE")).
		WithArgs(billID).
		WillReturnRows(sqlmock.NewRows(payCols).
			AddRow(billID, 21, 9.99, nil, nil, date(2024, 1, 8), status, 21, ownerID, 1, start, end, 30))
}

func TestPayOnStartDayCompletesBill(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s, mock := newTestService(t, now)

	mock.ExpectBegin()
	expectLockedBill(mock, 34, 7, models.PaymentPending, date(2024, 1, 1), date(2024, 1, 31))
	mock.ExpectExec(q("UPDATE billings SET payment_status = ?, payment_method = ?, payment_date = ? WHERE id = ?")).
		WithArgs(models.PaymentCompleted, "card", now, int64(34)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE user_subscriptions SET start_date = ?, end_date = ? WHERE id = ?")).
		WithArgs("2024-01-01", "2024-01-31", int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := s.Pay(context.Background(), 34, 7, "card")

	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, res.Billing.PaymentStatus)
	assert.Equal(t, "card", *res.Billing.PaymentMethod)
	assert.True(t, res.Reanchored)
	assert.Equal(t, date(2024, 1, 1), res.Subscription.StartDate)
	assert.Equal(t, date(2024, 1, 31), res.Subscription.EndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayLateReanchorsToPaymentDay(t *testing.T) {
	now := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	s, mock := newTestService(t, now)

	mock.ExpectBegin()
	expectLockedBill(mock, 34, 7, models.PaymentPending, date(2024, 1, 1), date(2024, 1, 31))
	mock.ExpectExec(q("UPDATE billings")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("UPDATE user_subscriptions")).
		WithArgs("2024-01-05", "2024-02-04", int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := s.Pay(context.Background(), 34, 7, "card")

	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 5), res.Subscription.StartDate)
	assert.Equal(t, date(2024, 2, 4), res.Subscription.EndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayAheadOfQueuedPeriodKeepsDates(t *testing.T) {
	now := date(2024, 1, 15)
	s, mock := newTestService(t, now)

	mock.ExpectBegin()
	expectLockedBill(mock, 35, 7, models.PaymentPending, date(2024, 2, 1), date(2024, 3, 2))
	mock.ExpectExec(q("UPDATE billings")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := s.Pay(context.Background(), 35, 7, "paypal")

	require.NoError(t, err)
	assert.False(t, res.Reanchored)
	assert.Equal(t, date(2024, 2, 1), res.Subscription.StartDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayForeignBillIsForbidden(t *testing.T) {
	s, mock := newTestService(t, date(2024, 1, 1))

	mock.ExpectBegin()
	expectLockedBill(mock, 34, 99, models.PaymentPending, date(2024, 1, 1), date(2024, 1, 31))
	mock.ExpectRollback()

	_, err := s.Pay(context.Background(), 34, 7, "card")

	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayMissingBill(t *testing.T) {
	s, mock := newTestService(t, date(2024, 1, 1))

	mock.ExpectBegin()
	mock.ExpectQuery(q("WHERE b.id = ? FOR UPDATE")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(payCols))
	mock.ExpectRollback()

	_, err := s.Pay(context.Background(), 404, 7, "card")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayAlreadyCompletedIsNoop(t *testing.T) {
	s, mock := newTestService(t, date(2024, 1, 20))

	mock.ExpectBegin()
	expectLockedBill(mock, 34, 7, models.PaymentCompleted, date(2024, 1, 1), date(2024, 1, 31))
	mock.ExpectCommit()

	res, err := s.Pay(context.Background(), 34, 7, "card")

	require.NoError(t, err)
	assert.True(t, res.AlreadyPaid)
	assert.False(t, res.Reanchored)
	assert.Equal(t, date(2024, 1, 1), res.Subscription.StartDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayRequiresMethod(t *testing.T) {
	s, mock := newTestService(t, date(2024, 1, 1))

	_, err := s.Pay(context.Background(), 34, 7, "   ")

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}
