package identity

import (
	"github.com/goliatone/go-errors"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// VerificationTokenLength is the length of the one-time email confirmation
// token. Collision probability at this length is negligible; uniqueness is
// enforced by the storage schema, not the generator.
const VerificationTokenLength = 12

// NewVerificationToken generates a URL-safe, cryptographically random
// one-time token for email confirmation.
func NewVerificationToken() (string, error) {
	token, err := gonanoid.New(VerificationTokenLength)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate verification token")
	}
	return token, nil
}
