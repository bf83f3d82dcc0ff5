package identity

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SubscriptionTier is the account's subscription plan
type SubscriptionTier = string

const (
	// SubscriptionStarter is the default entry plan
	SubscriptionStarter SubscriptionTier = "starter"
	// SubscriptionPro is the individual paid plan
	SubscriptionPro SubscriptionTier = "pro"
	// SubscriptionBusiness is the team plan
	SubscriptionBusiness SubscriptionTier = "business"
)

// ParseSubscription validates plan membership
func ParseSubscription(s string) (SubscriptionTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SubscriptionStarter:
		return SubscriptionStarter, true
	case SubscriptionPro:
		return SubscriptionPro, true
	case SubscriptionBusiness:
		return SubscriptionBusiness, true
	default:
		return "", false
	}
}

// Account is the persisted identity record
type Account struct {
	bun.BaseModel     `bun:"table:accounts,alias:acc"`
	ID                uuid.UUID        `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email             string           `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash      string           `bun:"password_hash,notnull" json:"-"`
	Subscription      SubscriptionTier `bun:"subscription,notnull" json:"subscription,omitempty"`
	AvatarURL         string           `bun:"avatar_url" json:"avatar_url,omitempty"`
	SessionToken      *string          `bun:"session_token" json:"-"`
	Verified          bool             `bun:"verified" json:"verified"`
	VerificationToken *string          `bun:"verification_token,unique" json:"-"`
	CreatedAt         *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureSubscription defaults the plan to starter
func (a *Account) EnsureSubscription() {
	if a.Subscription == "" {
		a.Subscription = SubscriptionStarter
	}
}

// HasActiveSession reports whether a session token is currently persisted
func (a *Account) HasActiveSession() bool {
	return a.SessionToken != nil && *a.SessionToken != ""
}

// Projection returns the subset of the account safe to return to a client.
// Password hashes and tokens never leave the package through it.
func (a *Account) Projection() AccountProjection {
	return AccountProjection{
		ID:           a.ID.String(),
		Email:        a.Email,
		Subscription: a.Subscription,
	}
}

// AccountProjection is the client-facing view of an account
type AccountProjection struct {
	ID           string `json:"id,omitempty"`
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

// DeriveAvatarURL builds the gravatar URL for an email. The derivation is
// deterministic so an account always starts with the same avatar.
func DeriveAvatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:])
}
