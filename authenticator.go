package identity

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// LoginResult carries the issued session token and the public projection of
// the account that logged in.
type LoginResult struct {
	Token   string            `json:"token"`
	Account AccountProjection `json:"user"`
}

// Auther holds the authentication state machine: credential checks, session
// token issuance, and session revocation.
type Auther struct {
	store        AccountStore
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(store AccountStore, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		jwt.ClaimStrings(cfg.GetAudience()),
		defLogger{},
	)

	return &Auther{
		store:        store,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService overrides the token service used for session tokens.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	s.tokenService = ts
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and, for verified accounts, issues a
// session token and persists it on the account. Unknown email, unverified
// account, and wrong password each fail with a distinct message behind the
// same auth classification.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Warn("Login attempt for unknown email", "email", email)
			return nil, ErrWrongEmail
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during login")
	}

	if !account.Verified {
		s.logger.Warn("Login attempt for unverified account", "account_id", account.ID.String())
		return nil, ErrEmailNotVerified
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		s.logger.Warn("Login password mismatch", "account_id", account.ID.String())
		return nil, ErrWrongPassword
	}

	token, err := s.tokenService.Generate(account.ID.String())
	if err != nil {
		return nil, err
	}

	if err := s.store.SetSessionToken(ctx, account.ID, token); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist session token")
	}

	return &LoginResult{
		Token:   token,
		Account: account.Projection(),
	}, nil
}

// Logout clears the stored session token unconditionally. Calling it for an
// account with no active session is a no-op.
func (s *Auther) Logout(ctx context.Context, accountID uuid.UUID) error {
	if err := s.store.ClearSessionToken(ctx, accountID); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear session token")
	}

	return nil
}

// CurrentAccount returns the public projection of an account the
// authentication boundary already resolved. No storage access happens here.
func (s *Auther) CurrentAccount(account *Account) AccountProjection {
	return account.Projection()
}

// SessionFromToken validates a raw bearer token and returns its claims
func (s *Auther) SessionFromToken(raw string) (*SessionClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

// AccountFromSession resolves the acting account for validated claims and
// checks the presented token is still the one persisted on the account.
func (s *Auther) AccountFromSession(ctx context.Context, claims *SessionClaims, raw string) (*Account, error) {
	id, err := uuid.Parse(claims.AccountID())
	if err != nil {
		return nil, ErrTokenMalformed
	}

	account, err := s.store.GetByAccountID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrSessionRevoked
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve session account")
	}

	if account.SessionToken == nil || *account.SessionToken != raw {
		return nil, ErrSessionRevoked
	}

	return account, nil
}
