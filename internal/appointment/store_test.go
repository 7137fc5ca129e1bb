package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apptRows(a *Appointment) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "tenant_id", "patient_id", "doctor_id", "service_id", "scheduled_at", "status", "created_at",
	}).AddRow(a.ID, a.TenantID, a.PatientID, a.DoctorID, a.ServiceID, a.ScheduledAt, string(a.Status), a.CreatedAt)
}

func sample() *Appointment {
	serviceID := uuid.New()
	return &Appointment{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		PatientID:   uuid.New(),
		DoctorID:    uuid.New(),
		ServiceID:   &serviceID,
		ScheduledAt: time.Date(2024, 6, 21, 11, 30, 0, 0, time.UTC),
		Status:      StatusConfirmed,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestCreateReturnsConfirmed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	want := sample()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), want.TenantID, want.PatientID, want.DoctorID, want.ServiceID,
			want.ScheduledAt, "CONFIRMED", pgxmock.AnyArg()).
		WillReturnRows(apptRows(want))

	store := NewStore(mock)
	got, err := store.Create(context.Background(), want.TenantID, want.PatientID, want.DoctorID, want.ServiceID, want.ScheduledAt)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, StatusConfirmed, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelOnlyConfirmedRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE appointments SET status`).
		WithArgs("CANCELLED", id, "CONFIRMED").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewStore(mock)
	ok, err := store.Cancel(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, ok, "already-cancelled row must not report success")
}

func TestRescheduleClearsReminderFlags(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	at := time.Date(2024, 7, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`SET scheduled_at = \$1, reminder_24h_sent = FALSE, reminder_2h_sent = FALSE`).
		WithArgs(at, id, "CONFIRMED").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	ok, err := store.Reschedule(context.Background(), id, at)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCountCreatedSinceExcludesCancelled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments`).
		WithArgs(tenantID, since, "CANCELLED").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	store := NewStore(mock)
	n, err := store.CountCreatedSince(context.Background(), tenantID, since)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestGetConfirmedMissingReturnsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id, patientID := uuid.New(), uuid.New()
	mock.ExpectQuery(`FROM appointments`).
		WithArgs(id, patientID, "CONFIRMED").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "patient_id", "doctor_id", "service_id", "scheduled_at", "status", "created_at",
		}))

	store := NewStore(mock)
	got, err := store.GetConfirmed(context.Background(), id, patientID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReferenceIsLastSixHexUppercased(t *testing.T) {
	a := &Appointment{ID: uuid.MustParse("3f2504e0-4f89-41d3-9a0c-0305e82c3301")}
	assert.Equal(t, "2C3301", a.Reference())
}
