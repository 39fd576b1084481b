package rates

import (
	"context"
	"sync"
	"time"

	"fx_desk/internal/domain"
	"fx_desk/internal/domain/entity"
	"fx_desk/pkg/errcodes"
	"fx_desk/pkg/logx"
)

const (
	// defaultTTL чуть меньше минуты, чтобы котировка обновлялась между
	// обращениями техпанели, но провайдеры не дёргались на каждый запрос.
	defaultTTL      = 55 * time.Second
	defaultMaxStale = 10 * time.Minute
)

// Source — то, что кэш оборачивает; в проде это Chain.
type Source interface {
	USDTEUR(ctx context.Context) (entity.Quote, error)
}

// CachedSource — один слот котировки под мьютексом. Свежая котировка
// отдаётся из кэша; протухшая перезапрашивается; при отказе провайдеров
// устаревшая котировка служит дальше, но не дольше maxStale.
type CachedSource struct {
	source   Source
	ttl      time.Duration
	maxStale time.Duration

	mu   sync.Mutex
	slot *entity.Quote
}

func NewCachedSource(source Source) *CachedSource {
	return &CachedSource{
		source:   source,
		ttl:      defaultTTL,
		maxStale: defaultMaxStale,
	}
}

func (c *CachedSource) WithTTL(ttl, maxStale time.Duration) *CachedSource {
	c.ttl = ttl
	c.maxStale = maxStale

	return c
}

func (c *CachedSource) USDTEUR(ctx context.Context) (entity.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot != nil && c.slot.Age() <= c.ttl {
		return *c.slot, nil
	}

	quote, err := c.source.USDTEUR(ctx)
	if err == nil {
		c.slot = &quote
		return quote, nil
	}

	if c.slot != nil && c.slot.Age() <= c.maxStale {
		logger(ctx).Warn("serving stale quote",
			"age", c.slot.Age().String(),
			"source", c.slot.Source,
			logx.Error(err),
		)

		return *c.slot, nil
	}

	return entity.Quote{}, domain.WrapError(err, errcodes.QuoteUnavailable, "quote providers unavailable")
}
