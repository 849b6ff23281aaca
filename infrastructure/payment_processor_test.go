package infrastructure

import (
	"context"
	"testing"
	"time"

	"gambler/challenge-service/domain/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedPaymentProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("always approves at full success rate", func(t *testing.T) {
		processor := NewSimulatedPaymentProcessor(1, 0)
		for i := 0; i < 20; i++ {
			ok, err := processor.Process(ctx, uuid.New(), entities.MustMoney("10"), "card")
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("always declines at zero success rate", func(t *testing.T) {
		processor := NewSimulatedPaymentProcessor(0, 0)
		ok, err := processor.Process(ctx, uuid.New(), entities.MustMoney("10"), "card")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("respects cancellation during the delay", func(t *testing.T) {
		processor := NewSimulatedPaymentProcessor(1, time.Minute)
		cancelled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		ok, err := processor.Process(cancelled, uuid.New(), entities.MustMoney("10"), "card")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, ok)
	})
}
