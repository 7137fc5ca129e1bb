package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists conversations.
type Store struct {
	db DB
}

// NewStore creates a conversation store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

func scanConversation(row pgx.Row) (*Conversation, error) {
	var c Conversation
	var draft []byte
	err := row.Scan(&c.ID, &c.TenantID, &c.Phone, &c.State, &draft, &c.PatientID, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(draft) > 0 {
		if err := json.Unmarshal(draft, &c.Draft); err != nil {
			return nil, fmt.Errorf("conversation: decode draft: %w", err)
		}
	}
	return &c, nil
}

// GetOrCreate upserts the (tenant, phone) conversation. Every inbound message
// refreshes the idle-expiry window, and a conversation whose window already
// lapsed comes back as IDLE with an empty draft. The lapse check and the
// refresh happen in the same statement so the returned row never carries a
// stale state behind a fresh expiry.
func (s *Store) GetOrCreate(ctx context.Context, tenantID uuid.UUID, phone string) (*Conversation, error) {
	expiresAt := time.Now().UTC().Add(TTL)
	row := s.db.QueryRow(ctx, `
		INSERT INTO conversations (id, tenant_id, phone, state, draft, expires_at)
		VALUES ($1, $2, $3, $4, '{}', $5)
		ON CONFLICT (tenant_id, phone)
		DO UPDATE SET
			state      = CASE WHEN conversations.expires_at < now() THEN 'IDLE' ELSE conversations.state END,
			draft      = CASE WHEN conversations.expires_at < now() THEN '{}'::jsonb ELSE conversations.draft END,
			expires_at = $5,
			updated_at = now()
		RETURNING id, tenant_id, phone, state, draft, patient_id, expires_at, created_at`,
		uuid.New(), tenantID, phone, string(StateIdle), expiresAt)
	c, err := scanConversation(row)
	if err != nil {
		return nil, fmt.Errorf("conversation: get or create: %w", err)
	}
	return c, nil
}

// Update writes the conversation's state and draft.
func (s *Store) Update(ctx context.Context, c *Conversation) error {
	draft, err := json.Marshal(c.Draft)
	if err != nil {
		return fmt.Errorf("conversation: encode draft: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		UPDATE conversations SET state = $1, draft = $2, updated_at = now() WHERE id = $3`,
		string(c.State), draft, c.ID)
	if err != nil {
		return fmt.Errorf("conversation: update: %w", err)
	}
	return nil
}

// LinkPatient attaches the patient record to the conversation once.
func (s *Store) LinkPatient(ctx context.Context, id, patientID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE conversations SET patient_id = $1, updated_at = now() WHERE id = $2`,
		patientID, id)
	if err != nil {
		return fmt.Errorf("conversation: link patient: %w", err)
	}
	return nil
}

// Reset returns the conversation to IDLE with an empty draft.
func (s *Store) Reset(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE conversations SET state = $1, draft = '{}', updated_at = now() WHERE id = $2`,
		string(StateIdle), id)
	if err != nil {
		return fmt.Errorf("conversation: reset: %w", err)
	}
	return nil
}
