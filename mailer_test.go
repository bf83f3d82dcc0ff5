package identity_test

import (
	"context"
	"errors"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/mock"
)

func newMailerConfig(baseURL string) *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetBaseURL").Return(baseURL)
	return mockConfig
}

func TestSendVerificationEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds the verification link", func(t *testing.T) {
		mockMailer := new(MockMailer)
		notifier := identity.NewVerificationMailer(mockMailer, newMailerConfig("https://app.example.com"))

		mockMailer.On("Send", ctx, mock.MatchedBy(func(msg identity.Email) bool {
			return msg.To == "test@example.com" &&
				msg.Subject == "Please confirm your email" &&
				msg.HTML == `<a href="https://app.example.com/api/users/verify/a1b2c3d4e5f6">Confirm your email</a>`
		})).Return(nil).Once()

		notifier.SendVerificationEmail(ctx, "test@example.com", "a1b2c3d4e5f6")

		mockMailer.AssertExpectations(t)
	})

	t.Run("normalizes a trailing slash in the base URL", func(t *testing.T) {
		mockMailer := new(MockMailer)
		notifier := identity.NewVerificationMailer(mockMailer, newMailerConfig("https://app.example.com/"))

		mockMailer.On("Send", ctx, mock.MatchedBy(func(msg identity.Email) bool {
			return msg.HTML == `<a href="https://app.example.com/api/users/verify/tok">Confirm your email</a>`
		})).Return(nil).Once()

		notifier.SendVerificationEmail(ctx, "test@example.com", "tok")

		mockMailer.AssertExpectations(t)
	})

	t.Run("swallows transport failures", func(t *testing.T) {
		mockMailer := new(MockMailer)
		notifier := identity.NewVerificationMailer(mockMailer, newMailerConfig("https://app.example.com"))

		mockMailer.On("Send", ctx, mock.Anything).
			Return(errors.New("sendgrid is down")).Once()

		// must not panic or surface the error
		notifier.SendVerificationEmail(ctx, "test@example.com", "tok")

		mockMailer.AssertExpectations(t)
	})
}
