package clinic

import (
	"context"
	"errors"
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

// Store provides tenant lookups and updates.
type Store struct {
	db DB
}

// NewStore creates a tenant store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const tenantColumns = `id, phone_number_id, access_token, name, locale, timezone,
	subscription_tier, is_active, trial_started_at, owner_phone, created_at, updated_at`

// ByPhoneNumberID returns the tenant owning a WhatsApp phone-number id,
// or nil when no tenant matches.
func (s *Store) ByPhoneNumberID(ctx context.Context, phoneNumberID string) (*Tenant, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE phone_number_id = $1`, phoneNumberID)
	return scanTenant(row)
}

// ByID returns a tenant by primary key, or nil when missing.
func (s *Store) ByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE id = $1`, id)
	return scanTenant(row)
}

// TrialStartedOn lists active tenants with an owner contact whose trial
// started within the given calendar-day window [dayStart, dayEnd).
func (s *Store) TrialStartedOn(ctx context.Context, dayStart, dayEnd time.Time) ([]Tenant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE is_active
		  AND owner_phone IS NOT NULL AND owner_phone <> ''
		  AND trial_started_at >= $1 AND trial_started_at < $2
		ORDER BY created_at ASC`, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("clinic: list trial tenants: %w", err)
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		t, err := scanTenantRow(rows)
		if err != nil {
			return nil, fmt.Errorf("clinic: scan tenant: %w", err)
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

func scanTenant(row pgx.Row) (*Tenant, error) {
	t, err := scanTenantRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("clinic: get tenant: %w", err)
	}
	return t, nil
}

func scanTenantRow(row pgx.Row) (*Tenant, error) {
	var t Tenant
	var ownerPhone *string
	err := row.Scan(
		&t.ID, &t.PhoneNumberID, &t.AccessToken, &t.Name, &t.Locale, &t.Timezone,
		&t.SubscriptionTier, &t.IsActive, &t.TrialStartedAt, &ownerPhone,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ownerPhone != nil {
		t.OwnerPhone = *ownerPhone
	}
	return &t, nil
}
