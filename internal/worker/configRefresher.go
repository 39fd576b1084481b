package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"fx_desk/internal/domain/entity"
	"fx_desk/pkg/contextx"
	"fx_desk/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type configSource interface {
	Refresh(ctx context.Context) (entity.RateConfig, error)
}

type quoteSource interface {
	USDTEUR(ctx context.Context) (entity.Quote, error)
}

// ConfigRefresher фоново перечитывает админскую конфигурацию и греет кэш
// котировки, чтобы первый клиентский запрос после простоя не ждал
// провайдеров. Отказы не фатальны: кэши продолжают служить последний
// известный снимок.
type ConfigRefresher struct {
	config   configSource
	quotes   quoteSource
	interval time.Duration

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewConfigRefresher(config configSource, quotes quoteSource, interval time.Duration) *ConfigRefresher {
	if interval <= 0 {
		interval = time.Minute
	}

	return &ConfigRefresher{
		config:   config,
		quotes:   quotes,
		interval: interval,
	}
}

func (w *ConfigRefresher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("refresher is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(runCtx).Error("refresher stopped", logx.Error(err))
		}
	}()

	return nil
}

func (w *ConfigRefresher) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// IsRunning возвращает текущий статус.
func (w *ConfigRefresher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

func (w *ConfigRefresher) Run(ctx context.Context) error {
	logger(ctx).Info("config refresher started", "interval", w.interval.String())

	w.refreshOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("config refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.refreshOnce(ctx)
		}
	}
}

func (w *ConfigRefresher) refreshOnce(ctx context.Context) {
	if _, err := w.config.Refresh(ctx); err != nil {
		logger(ctx).Warn("config refresh failed", logx.Error(err))
	}

	if _, err := w.quotes.USDTEUR(ctx); err != nil {
		logger(ctx).Warn("quote warmup failed", logx.Error(err))
	}
}
