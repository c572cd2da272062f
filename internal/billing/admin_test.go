package billing

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/models"
)

var billCols = []string{"id", "user_subscription_id", "amount", "payment_method", "payment_date", "due_date", "payment_status"}

func TestUpdateBillWithoutFields(t *testing.T) {
	s, mock := newTestService(t, date(2024, 1, 1))

	_, err := s.UpdateBill(context.Background(), 1, BillUpdate{})

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "No valid fields provided", e.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBillRejectsUnknownStatus(t *testing.T) {
	s, _ := newTestService(t, date(2024, 1, 1))
	status := "FAILED"

	_, err := s.UpdateBill(context.Background(), 1, BillUpdate{PaymentStatus: &status})

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindValidation, e.Kind)
}

func TestUpdateBillMissing(t *testing.T) {
	s, mock := newTestService(t, date(2024, 1, 1))
	amount := 5.0

	mock.ExpectQuery(q("SELECT id FROM billings WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.UpdateBill(context.Background(), 9, BillUpdate{Amount: &amount})

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBillOnlyProvidedFields(t *testing.T) {
	s, mock := newTestService(t, date(2024, 1, 1))
	amount := 12.5
	status := "completed"

	mock.ExpectQuery(q("SELECT id FROM billings WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(q("UPDATE billings SET amount = ?, payment_status = ? WHERE id = ?")).
		WithArgs(12.5, models.PaymentCompleted, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("FROM billings b WHERE b.id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(billCols).AddRow(3, 21, 12.5, nil, nil, date(2024, 1, 8), "COMPLETED"))

	b, err := s.UpdateBill(context.Background(), 3, BillUpdate{Amount: &amount, PaymentStatus: &status})

	require.NoError(t, err)
	assert.Equal(t, 12.5, b.Amount)
	assert.False(t, b.Overdue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBillFlagsOverdue(t *testing.T) {
	s, mock := newTestService(t, date(2024, 2, 1))

	mock.ExpectQuery(q("FROM billings b WHERE b.id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(billCols).AddRow(3, 21, 9.99, nil, nil, date(2024, 1, 8), "PENDING"))

	b, err := s.GetBill(context.Background(), 3)

	require.NoError(t, err)
	assert.True(t, b.Overdue)
}

func TestDeleteBillMissing(t *testing.T) {
	s, mock := newTestService(t, date(2024, 1, 1))

	mock.ExpectQuery(q("SELECT id FROM billings WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := s.DeleteBill(context.Background(), 9)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
