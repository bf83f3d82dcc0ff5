package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPrepareAccountDefaults(t *testing.T) {
	t.Parallel()

	t.Run("fills missing fields", func(t *testing.T) {
		record := &Account{Email: "test@example.com"}

		prepareAccountDefaults(record)

		assert.Equal(t, SubscriptionStarter, record.Subscription)
		assert.Equal(t, DeriveAvatarURL("test@example.com"), record.AvatarURL)
		assert.NotEqual(t, uuid.Nil, record.ID)
	})

	t.Run("keeps populated fields", func(t *testing.T) {
		id := uuid.New()
		record := &Account{
			ID:           id,
			Email:        "test@example.com",
			Subscription: SubscriptionBusiness,
			AvatarURL:    "/avatars/custom.png",
		}

		prepareAccountDefaults(record)

		assert.Equal(t, id, record.ID)
		assert.Equal(t, SubscriptionBusiness, record.Subscription)
		assert.Equal(t, "/avatars/custom.png", record.AvatarURL)
	})

	t.Run("tolerates nil", func(t *testing.T) {
		assert.NotPanics(t, func() {
			prepareAccountDefaults(nil)
		})
	})
}
