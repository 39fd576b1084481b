package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx_desk/internal/domain/entity"
)

type countingConfig struct {
	calls atomic.Int32
}

func (c *countingConfig) Refresh(_ context.Context) (entity.RateConfig, error) {
	c.calls.Add(1)
	return entity.RateConfig{}, nil
}

type countingQuotes struct {
	calls atomic.Int32
}

func (c *countingQuotes) USDTEUR(_ context.Context) (entity.Quote, error) {
	c.calls.Add(1)
	return entity.Quote{}, nil
}

func TestConfigRefresherLifecycle(t *testing.T) {
	t.Parallel()

	config := &countingConfig{}
	quotes := &countingQuotes{}

	refresher := NewConfigRefresher(config, quotes, 10*time.Millisecond)

	require.NoError(t, refresher.Start(context.Background()))
	assert.True(t, refresher.IsRunning())

	// Повторный запуск отбивается.
	require.Error(t, refresher.Start(context.Background()))

	// Первый проход идёт сразу, дальше по тикеру.
	assert.Eventually(t, func() bool {
		return config.calls.Load() >= 2 && quotes.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	refresher.Stop()
	assert.False(t, refresher.IsRunning())

	// После остановки новых проходов нет.
	settled := config.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, config.calls.Load())
}
