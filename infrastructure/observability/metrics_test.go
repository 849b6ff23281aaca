package observability

import (
	"context"
	"testing"

	"gambler/challenge-service/config"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = meterProvider.Shutdown(context.Background()) })

	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.createInstruments(meterProvider.Meter("test")))
	mp.initialized = true
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestMetricsProvider_HandleEvent(t *testing.T) {
	mp, reader := newTestProvider(t)
	ctx := context.Background()

	challenge := &entities.Challenge{ID: uuid.New(), GameType: entities.GameTypeFIFA, Status: entities.ChallengeStatusNegotiating}
	require.NoError(t, mp.HandleEvent(ctx, events.NewChallengeStateChangeEvent(events.EventTypeChallengeCreated, challenge, "", nil)))
	require.NoError(t, mp.HandleEvent(ctx, events.NewChallengeStateChangeEvent(events.EventTypeChallengeCreated, challenge, "", nil)))
	require.NoError(t, mp.HandleEvent(ctx, events.ChallengeSettledEvent{
		ChallengeID: challenge.ID,
		GameType:    entities.GameTypeFIFA,
		StakeAmount: entities.MustMoney("20.00"),
	}))
	require.NoError(t, mp.HandleEvent(ctx, events.BalanceChangeEvent{TransactionType: entities.TransactionTypeDeposit}))

	data := collect(t, reader)

	eventsSum, ok := data[EventsTotal].(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range eventsSum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(4), total)

	open, ok := data[ChallengesOpen].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, open.DataPoints, 1)
	assert.Equal(t, int64(1), open.DataPoints[0].Value)

	stake, ok := data[SettledStakeTotal].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, stake.DataPoints, 1)
	assert.InDelta(t, 20.0, stake.DataPoints[0].Value, 0.001)
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	var nilProvider *MetricsProvider
	nilProvider.RecordExpirySweep()
	nilProvider.RecordNATSMessagePublished("challenge_created")

	cfg := config.NewTestConfig()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.NoError(t, mp.HandleEvent(context.Background(), events.BalanceChangeEvent{}))
	assert.False(t, mp.isEnabled())
}
