package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ResendVerificationMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *ResendVerificationResponse)
}

func (e ResendVerificationMessage) Type() string { return "account.resend_verification" }

type ResendVerificationResponse struct {
	Message string `json:"message"`
}

type ResendVerificationHandler struct {
	store    AccountStore
	notifier *VerificationMailer
}

func NewResendVerificationHandler(store AccountStore, notifier *VerificationMailer) *ResendVerificationHandler {
	return &ResendVerificationHandler{store: store, notifier: notifier}
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	if event.Email == "" {
		return ErrMissingEmail
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.store.GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification resend")
	}

	if account.Verified {
		return ErrAlreadyVerified
	}

	if account.VerificationToken == nil || *account.VerificationToken == "" {
		return goerrors.New("account is missing a verification token", goerrors.CategoryInternal).
			WithMetadata(map[string]any{"account_id": account.ID.String()})
	}

	// Resend reuses the stored token, only the signup path mints new ones.
	h.notifier.SendVerificationEmail(ctx, account.Email, *account.VerificationToken)

	if event.OnResponse != nil {
		event.OnResponse(&ResendVerificationResponse{Message: "Verification email sent"})
	}

	return nil
}
