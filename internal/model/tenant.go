package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscription states of a tenant.
const (
	SubscriptionTrial    = "TRIAL"
	SubscriptionActive   = "ACTIVE"
	SubscriptionInactive = "INACTIVE"
)

// Tenant is one business using the system. Every product, sale and user belongs to one.
type Tenant struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name               string    `gorm:"not null"`
	SubscriptionStatus string    `gorm:"type:varchar(20);not null;default:'TRIAL'"`
	TrialEndsAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
