package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mawidhq/clinic-bot/internal/clinic"
)

// Patient is identified by (tenant, phone) and created lazily on the first
// inbound message from an unseen number.
type Patient struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	Phone              string
	NameAR             string
	NameEN             string
	LanguagePreference clinic.Locale
	LastInteractionAt  time.Time
	CreatedAt          time.Time
}

// DisplayName picks the localized patient name; empty when never captured.
func (p *Patient) DisplayName(arabic bool) string {
	if arabic || p.NameEN == "" {
		return p.NameAR
	}
	return p.NameEN
}

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists patients.
type Store struct {
	db DB
}

// NewStore creates a patient store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Upsert creates the patient on first contact or refreshes the
// last-interaction timestamp on a repeat one. The tenant's locale seeds the
// language preference for new rows.
func (s *Store) Upsert(ctx context.Context, tenantID uuid.UUID, phone string, locale clinic.Locale) (*Patient, error) {
	now := time.Now().UTC()

	var p Patient
	var nameAR, nameEN *string
	err := s.db.QueryRow(ctx, `
		INSERT INTO patients (id, tenant_id, phone, language_preference, last_interaction_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (tenant_id, phone)
		DO UPDATE SET last_interaction_at = $5
		RETURNING id, tenant_id, phone, name_ar, name_en, language_preference, last_interaction_at, created_at`,
		uuid.New(), tenantID, phone, string(locale), now).
		Scan(&p.ID, &p.TenantID, &p.Phone, &nameAR, &nameEN, &p.LanguagePreference, &p.LastInteractionAt, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("patient: upsert: %w", err)
	}
	if nameAR != nil {
		p.NameAR = *nameAR
	}
	if nameEN != nil {
		p.NameEN = *nameEN
	}
	return &p, nil
}

// ByID returns a patient by primary key, or nil when missing.
func (s *Store) ByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	var nameAR, nameEN *string
	err := s.db.QueryRow(ctx, `
		SELECT id, tenant_id, phone, name_ar, name_en, language_preference, last_interaction_at, created_at
		FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.TenantID, &p.Phone, &nameAR, &nameEN, &p.LanguagePreference, &p.LastInteractionAt, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("patient: get: %w", err)
	}
	if nameAR != nil {
		p.NameAR = *nameAR
	}
	if nameEN != nil {
		p.NameEN = *nameEN
	}
	return &p, nil
}
