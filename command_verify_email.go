package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerifyEmailMessage struct {
	Token      string `json:"verification_token"`
	OnResponse func(resp *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "account.verify_email" }

type VerifyEmailResponse struct {
	Message string `json:"message"`
}

type VerifyEmailHandler struct {
	store AccountStore
}

func NewVerifyEmailHandler(store AccountStore) *VerifyEmailHandler {
	return &VerifyEmailHandler{store: store}
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.store.GetByVerificationToken(ctx, event.Token)
	if err != nil {
		// Verification clears the token, so a repeated call lands here too:
		// the second attempt reports not found rather than already verified.
		if goerrors.IsNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification")
	}

	if _, err := h.store.MarkVerified(ctx, account.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark account as verified")
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyEmailResponse{Message: "Verification successful"})
	}

	return nil
}
