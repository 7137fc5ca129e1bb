package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateDecodesDraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	convID := uuid.New()
	doctorID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO conversations`).
		WithArgs(pgxmock.AnyArg(), tenantID, "966555000111", "IDLE", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "phone", "state", "draft", "patient_id", "expires_at", "created_at",
		}).AddRow(convID, tenantID, "966555000111", "SELECTING_DATE",
			[]byte(`{"doctor_id":"`+doctorID.String()+`","date":"2024-06-10"}`),
			(*uuid.UUID)(nil), now.Add(TTL), now))

	store := NewStore(mock)
	c, err := store.GetOrCreate(context.Background(), tenantID, "966555000111")
	require.NoError(t, err)

	assert.Equal(t, StateSelectingDate, c.State)
	require.NotNil(t, c.Draft.DoctorID)
	assert.Equal(t, doctorID, *c.Draft.DoctorID)
	assert.Equal(t, "2024-06-10", c.Draft.Date)
	require.NoError(t, mock.ExpectationsWereMet())
}

// The upsert must fold the lapse check into the same statement that
// refreshes expires_at, so a conversation idle past its window always comes
// back IDLE with an empty draft rather than with its old state behind a
// fresh expiry.
func TestGetOrCreateResetsLapsedConversation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	convID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`CASE WHEN conversations\.expires_at < now\(\) THEN 'IDLE'`).
		WithArgs(pgxmock.AnyArg(), tenantID, "966555000111", "IDLE", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "phone", "state", "draft", "patient_id", "expires_at", "created_at",
		}).AddRow(convID, tenantID, "966555000111", "IDLE",
			[]byte(`{}`), (*uuid.UUID)(nil), now.Add(TTL), now.Add(-3*time.Hour)))

	store := NewStore(mock)
	c, err := store.GetOrCreate(context.Background(), tenantID, "966555000111")
	require.NoError(t, err)

	assert.Equal(t, StateIdle, c.State)
	assert.Equal(t, Draft{}, c.Draft)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetClearsStateAndDraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE conversations SET state = \$1, draft = '{}'`).
		WithArgs("IDLE", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	require.NoError(t, store.Reset(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}
