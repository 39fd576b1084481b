package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/entity"
	"fx_desk/pkg/logx"
)

const (
	fetchAttempts = 3
	backoffStep   = 300 * time.Millisecond
)

// Chain опрашивает провайдеров по очереди, каждого с ретраями и линейно
// растущей паузой. Первый успешный ответ становится котировкой.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) USDTEUR(ctx context.Context) (entity.Quote, error) {
	var errs []error

	for _, provider := range c.providers {
		rate, err := c.fetchWithRetry(ctx, provider)
		if err != nil {
			logger(ctx).Warn("quote provider failed",
				"provider", provider.Name(),
				logx.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", provider.Name(), err))

			continue
		}

		return newQuote(rate, provider.Name()), nil
	}

	return entity.Quote{}, fmt.Errorf("all quote providers failed: %w", errors.Join(errs...))
}

func (c *Chain) fetchWithRetry(ctx context.Context, provider Provider) (rate decimal.Decimal, err error) {
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		rate, err = provider.FetchUSDTEUR(ctx)
		if err == nil {
			return rate, nil
		}

		if attempt == fetchAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return rate, ctx.Err()
		case <-time.After(backoffStep * time.Duration(attempt)):
		}
	}

	return rate, err
}
