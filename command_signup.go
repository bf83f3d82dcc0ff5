package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

type SignupMessage struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Subscription string `json:"subscription"`
	UseHashid    bool
	OnResponse   func(resp *SignupResponse)
}

func (e SignupMessage) Type() string { return "account.signup" }

type SignupResponse struct {
	Account AccountProjection `json:"user"`
}

type SignupHandler struct {
	store    AccountStore
	notifier *VerificationMailer
}

func NewSignupHandler(store AccountStore, notifier *VerificationMailer) *SignupHandler {
	return &SignupHandler{store: store, notifier: notifier}
}

func (h *SignupHandler) Execute(ctx context.Context, event SignupMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupHandler) execute(ctx context.Context, event SignupMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	verificationToken, err := NewVerificationToken()
	if err != nil {
		return err
	}

	// Optimistic existence check. The window until Register commits is not
	// atomic; the storage uniqueness constraint is the authoritative guard
	// and its violation maps to the same conflict classification below.
	if _, err := h.store.GetByEmail(ctx, event.Email); err == nil {
		return ErrEmailInUse
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryValidation, "failed to hash password")
	}

	subscription, ok := ParseSubscription(event.Subscription)
	if !ok {
		subscription = SubscriptionStarter
	}

	account := &Account{
		Email:             event.Email,
		PasswordHash:      hash,
		Subscription:      subscription,
		AvatarURL:         DeriveAvatarURL(event.Email),
		VerificationToken: &verificationToken,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(event.Email); err == nil {
			account.ID = id
		}
	}

	saved, err := h.store.Register(ctx, account)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryConflict {
			return ErrEmailInUse
		}
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error())
	}

	h.notifier.SendVerificationEmail(ctx, saved.Email, verificationToken)

	if event.OnResponse != nil {
		event.OnResponse(&SignupResponse{Account: saved.Projection()})
	}

	return nil
}
