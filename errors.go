package identity

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeEmailInUse       = "identity_email_in_use"
	TextCodeWrongEmail       = "identity_wrong_email"
	TextCodeNotVerified      = "identity_email_not_verified"
	TextCodeWrongPassword    = "identity_wrong_password"
	TextCodeAccountNotFound  = "identity_account_not_found"
	TextCodeMissingEmail     = "identity_missing_email"
	TextCodeAlreadyVerified  = "identity_already_verified"
	TextCodeTokenExpired     = "identity_token_expired"
	TextCodeTokenMalformed   = "identity_token_malformed"
	TextCodeSessionMismatch  = "identity_session_mismatch"
	TextCodeAvatarProcessing = "identity_avatar_processing"
)

// ErrEmailInUse is returned when signup finds an account with the same email.
var ErrEmailInUse = errors.New("Email already in use!!!", errors.CategoryConflict).
	WithTextCode(TextCodeEmailInUse).
	WithCode(errors.CodeConflict)

// ErrWrongEmail is returned when login finds no account for the email.
var ErrWrongEmail = errors.New("Email is wrong! Try again.", errors.CategoryAuth).
	WithTextCode(TextCodeWrongEmail).
	WithCode(errors.CodeUnauthorized)

// ErrEmailNotVerified is returned when an unverified account attempts to log
// in, regardless of password correctness.
var ErrEmailNotVerified = errors.New("Email is not verified yet! Please check your mail box", errors.CategoryAuth).
	WithTextCode(TextCodeNotVerified).
	WithCode(errors.CodeUnauthorized)

// ErrWrongPassword is returned when the password comparison fails.
var ErrWrongPassword = errors.New("Password is wrong! Try again.", errors.CategoryAuth).
	WithTextCode(TextCodeWrongPassword).
	WithCode(errors.CodeUnauthorized)

// ErrAccountNotFound is returned when no account matches a verification token
// or a resend-verification email.
var ErrAccountNotFound = errors.New("User not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrMissingEmail is returned when resend-verification is called without an email.
var ErrMissingEmail = errors.New("Missing required field email", errors.CategoryValidation).
	WithTextCode(TextCodeMissingEmail).
	WithCode(errors.CodeBadRequest)

// ErrAlreadyVerified rejects resend-verification for verified accounts.
var ErrAlreadyVerified = errors.New("Verification has already been passed", errors.CategoryValidation).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned for session tokens past their expiry.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for session tokens that fail to parse or verify.
var ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrSessionRevoked is returned when a valid token no longer matches the
// session persisted on the account (logout or a newer login).
var ErrSessionRevoked = errors.New("session is no longer active", errors.CategoryAuth).
	WithTextCode(TextCodeSessionMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the bare sentinel for a bcrypt mismatch.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty plaintext passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired") ||
		strings.Contains(err.Error(), "token expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
