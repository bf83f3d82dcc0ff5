package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds identity options. Values are read once at process start and
// are immutable afterwards; every constructor receives the same object.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetBaseURL() string
	GetMailAPIKey() string
	GetMailSender() string
	GetAvatarStagingDir() string
	GetAvatarPublicDir() string
	GetAvatarURLPrefix() string
}

// AccountStore is the storage surface the lifecycle components consume
type AccountStore interface {
	Register(ctx context.Context, account *Account) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByAccountID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByVerificationToken(ctx context.Context, token string) (*Account, error)
	SetSessionToken(ctx context.Context, id uuid.UUID, token string) error
	ClearSessionToken(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) (*Account, error)
	UpdateSubscription(ctx context.Context, id uuid.UUID, tier SubscriptionTier) (*Account, error)
	UpdateAvatarURL(ctx context.Context, id uuid.UUID, avatarURL string) (*Account, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
