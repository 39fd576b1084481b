package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/value"
)

func TestBinanceProvider(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "EURUSDT", r.URL.Query().Get("symbol"))

		_, _ = w.Write([]byte(`{"symbol":"EURUSDT","price":"1.25"}`))
	}))
	defer srv.Close()

	provider := NewBinanceProvider().WithBaseURL(srv.URL)

	rate, err := provider.FetchUSDTEUR(context.Background())
	require.NoError(t, err)

	// Тикер 1.25 USDT за EUR => 0.8 EUR за USDT.
	assert.True(t, decimal.RequireFromString("0.8").Equal(rate), "rate %s", rate)
}

func TestBinanceProviderBadPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"price":"0"}`))
	}))
	defer srv.Close()

	_, err := NewBinanceProvider().WithBaseURL(srv.URL).FetchUSDTEUR(context.Background())
	require.Error(t, err)
}

func TestExchangerateHostProvider(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92}}`))
	}))
	defer srv.Close()

	rate, err := NewExchangerateHostProvider().WithBaseURL(srv.URL).FetchUSDTEUR(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.92").Equal(rate))
}

type stubProvider struct {
	name  string
	rate  decimal.Decimal
	err   error
	calls atomic.Int32
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) FetchUSDTEUR(_ context.Context) (decimal.Decimal, error) {
	p.calls.Add(1)

	if p.err != nil {
		return decimal.Zero, p.err
	}

	return p.rate, nil
}

func TestChainFallsThroughProviders(t *testing.T) {
	t.Parallel()

	broken := &stubProvider{name: "broken", err: errors.New("timeout")}
	healthy := &stubProvider{name: "healthy", rate: decimal.RequireFromString("0.92")}

	chain := NewChain(broken, healthy)

	quote, err := chain.USDTEUR(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "healthy", quote.Source)
	assert.True(t, decimal.RequireFromString("0.92").Equal(quote.Rate))
	assert.Equal(t, value.Pair{From: value.USDT, To: value.EUR}, quote.Pair)

	// Сломанный провайдер ретраится до лимита, здоровый отвечает с первого раза.
	assert.Equal(t, int32(fetchAttempts), broken.calls.Load())
	assert.Equal(t, int32(1), healthy.calls.Load())
}

func TestChainAllProvidersFailed(t *testing.T) {
	t.Parallel()

	chain := NewChain(&stubProvider{name: "a", err: errors.New("down")})

	_, err := chain.USDTEUR(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all quote providers failed")
}

type stubSource struct {
	quote entity.Quote
	err   error
	calls int
}

func (s *stubSource) USDTEUR(_ context.Context) (entity.Quote, error) {
	s.calls++

	if s.err != nil {
		return entity.Quote{}, s.err
	}

	return s.quote, nil
}

func TestCachedSourceServesFreshFromSlot(t *testing.T) {
	t.Parallel()

	source := &stubSource{quote: newQuote(decimal.RequireFromString("0.92"), "stub")}
	cached := NewCachedSource(source)

	for i := 0; i < 3; i++ {
		quote, err := cached.USDTEUR(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "stub", quote.Source)
	}

	assert.Equal(t, 1, source.calls)
}

func TestCachedSourceServesStaleOnFailure(t *testing.T) {
	t.Parallel()

	source := &stubSource{quote: newQuote(decimal.RequireFromString("0.92"), "stub")}
	cached := NewCachedSource(source).WithTTL(time.Nanosecond, time.Hour)

	_, err := cached.USDTEUR(context.Background())
	require.NoError(t, err)

	// Слот протух, провайдеры лежат: отдаём устаревшую котировку.
	source.err = errors.New("providers down")
	time.Sleep(time.Millisecond)

	quote, err := cached.USDTEUR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stub", quote.Source)
}

func TestCachedSourceFailsPastMaxStaleness(t *testing.T) {
	t.Parallel()

	source := &stubSource{quote: newQuote(decimal.RequireFromString("0.92"), "stub")}
	cached := NewCachedSource(source).WithTTL(time.Nanosecond, time.Nanosecond)

	_, err := cached.USDTEUR(context.Background())
	require.NoError(t, err)

	source.err = errors.New("providers down")
	time.Sleep(time.Millisecond)

	_, err = cached.USDTEUR(context.Background())
	require.Error(t, err)
}
