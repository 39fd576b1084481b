package sheets

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"fx_desk/internal/domain"
	"fx_desk/internal/domain/entity"
	"fx_desk/pkg/contextx"
	"fx_desk/pkg/errcodes"
	"fx_desk/pkg/httpx"
	"fx_desk/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	configCacheKey = "rate_config"

	defaultCacheTTL = time.Minute
	clientTimeout   = 10 * time.Second
)

// Client тянет CSV-выгрузку админской таблицы и держит распаршенный снимок
// в кэше. При недоступности таблицы служит последний снимок без ограничения
// по возрасту: конфигурация меняется руками и редко.
type Client struct {
	httpClient *http.Client
	url        string
	snapshots  *cache.Cache
}

func NewClient(url string, cacheTTL time.Duration) *Client {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   clientTimeout,
			Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport),
		},
		url:       url,
		snapshots: cache.New(cacheTTL, cacheTTL),
	}
}

// Current возвращает снимок конфигурации: свежий из кэша, иначе с перечиткой
// таблицы, при отказе — последний известный.
func (c *Client) Current(ctx context.Context) (entity.RateConfig, error) {
	if cached, found := c.snapshots.Get(configCacheKey); found {
		return cached.(entity.RateConfig), nil
	}

	cfg, err := c.fetch(ctx)
	if err != nil {
		if stale, found := c.snapshots.Get(lastKnownKey); found {
			logger(ctx).Warn("sheet unavailable, serving last known config", logx.Error(err))

			return stale.(entity.RateConfig), nil
		}

		return entity.RateConfig{}, domain.WrapError(err, errcodes.ConfigMissing, "rate config unavailable")
	}

	c.snapshots.SetDefault(configCacheKey, cfg)
	c.snapshots.Set(lastKnownKey, cfg, cache.NoExpiration)

	return cfg, nil
}

// Refresh принудительно перечитывает таблицу, минуя кэш.
func (c *Client) Refresh(ctx context.Context) (entity.RateConfig, error) {
	cfg, err := c.fetch(ctx)
	if err != nil {
		return entity.RateConfig{}, domain.WrapError(err, errcodes.ConfigMissing, "rate config refresh failed")
	}

	c.snapshots.SetDefault(configCacheKey, cfg)
	c.snapshots.Set(lastKnownKey, cfg, cache.NoExpiration)

	logger(ctx).Info("rate config refreshed",
		"rub_per_usdt", cfg.RUBPerUSDT,
		"rsd_per_eur", cfg.RSDPerEUR,
		"spread", cfg.SpreadPercent,
		"fix_enabled", cfg.HasFixRate(),
	)

	return cfg, nil
}

const lastKnownKey = "rate_config_last_known"

func (c *Client) fetch(ctx context.Context) (entity.RateConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return entity.RateConfig{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entity.RateConfig{}, fmt.Errorf("fetch sheet: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return entity.RateConfig{}, fmt.Errorf("sheet responded %d", resp.StatusCode)
	}

	return ParseConfig(resp.Body)
}
