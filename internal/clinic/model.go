package clinic

import (
	"time"

	"github.com/google/uuid"
)

// Locale selects the language used for patient-facing messages.
type Locale string

const (
	LocaleAR Locale = "AR"
	LocaleEN Locale = "EN"
)

// Tier is a tenant's subscription level. It bounds how many appointments
// the clinic may create per calendar month.
type Tier string

const (
	TierStarter Tier = "STARTER"
	TierGrowth  Tier = "GROWTH"
	TierClinic  Tier = "CLINIC"
)

// MonthlyLimit returns the monthly booking ceiling for a tier.
// A zero limit means unlimited.
func (t Tier) MonthlyLimit() int {
	switch t {
	case TierStarter:
		return 100
	case TierGrowth:
		return 300
	case TierClinic:
		return 0
	default:
		return 100
	}
}

// Tenant is a clinic account and the multi-tenancy boundary for all data.
type Tenant struct {
	ID               uuid.UUID
	PhoneNumberID    string
	AccessToken      string
	Name             string
	Locale           Locale
	Timezone         string
	SubscriptionTier Tier
	IsActive         bool
	TrialStartedAt   *time.Time
	OwnerPhone       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Location resolves the tenant's timezone, falling back to UTC.
func (t *Tenant) Location() *time.Location {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
