package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type UpdateSubscriptionMessage struct {
	AccountID    uuid.UUID `json:"account_id"`
	Subscription string    `json:"subscription"`
	OnResponse   func(resp *UpdateSubscriptionResponse)
}

func (e UpdateSubscriptionMessage) Type() string { return "account.update_subscription" }

type UpdateSubscriptionResponse struct {
	Account *Account `json:"account"`
}

type UpdateSubscriptionHandler struct {
	store AccountStore
}

func NewUpdateSubscriptionHandler(store AccountStore) *UpdateSubscriptionHandler {
	return &UpdateSubscriptionHandler{store: store}
}

func (h *UpdateSubscriptionHandler) Execute(ctx context.Context, event UpdateSubscriptionMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during subscription update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateSubscriptionHandler) execute(ctx context.Context, event UpdateSubscriptionMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	tier, ok := ParseSubscription(event.Subscription)
	if !ok {
		return goerrors.New("unknown subscription tier", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"subscription": event.Subscription})
	}

	updated, err := h.store.UpdateSubscription(ctx, event.AccountID, tier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update subscription")
	}

	if event.OnResponse != nil {
		event.OnResponse(&UpdateSubscriptionResponse{Account: updated})
	}

	return nil
}
