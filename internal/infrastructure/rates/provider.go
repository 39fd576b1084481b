package rates

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/value"
	"fx_desk/pkg/contextx"
	"fx_desk/pkg/httpx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const clientTimeout = 5 * time.Second

// Provider — один источник рыночной котировки USDT/EUR (EUR за 1 USDT).
type Provider interface {
	Name() string
	FetchUSDTEUR(ctx context.Context) (decimal.Decimal, error)
}

// newHTTPClient собирает клиента с логированием исходящих запросов.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   clientTimeout,
		Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport),
	}
}

func fetchJSON(ctx context.Context, client *http.Client, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("client.Do: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// BinanceProvider берёт стакан EURUSDT с Binance. Тикер котируется как
// USDT за 1 EUR, поэтому курс USDT → EUR — обратная величина.
type BinanceProvider struct {
	client  *http.Client
	baseURL string
}

func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{
		client:  newHTTPClient(),
		baseURL: "https://api.binance.com",
	}
}

// WithBaseURL используется в тестах для подмены сервера.
func (p *BinanceProvider) WithBaseURL(url string) *BinanceProvider {
	p.baseURL = url
	return p
}

func (p *BinanceProvider) Name() string { return "binance" }

func (p *BinanceProvider) FetchUSDTEUR(ctx context.Context) (decimal.Decimal, error) {
	var payload struct {
		Price string `json:"price"`
	}

	if err := fetchJSON(ctx, p.client, p.baseURL+"/api/v3/ticker/price?symbol=EURUSDT", &payload); err != nil {
		return decimal.Zero, err
	}

	eurUSDT, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", payload.Price, err)
	}

	if !eurUSDT.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive price %s", eurUSDT)
	}

	return decimal.NewFromInt(1).Div(eurUSDT), nil
}

// ExchangerateHostProvider — резервный источник: кросс-курс USD → EUR
// как приближение USDT → EUR.
type ExchangerateHostProvider struct {
	client  *http.Client
	baseURL string
}

func NewExchangerateHostProvider() *ExchangerateHostProvider {
	return &ExchangerateHostProvider{
		client:  newHTTPClient(),
		baseURL: "https://api.exchangerate.host",
	}
}

func (p *ExchangerateHostProvider) WithBaseURL(url string) *ExchangerateHostProvider {
	p.baseURL = url
	return p
}

func (p *ExchangerateHostProvider) Name() string { return "exchangerate.host" }

func (p *ExchangerateHostProvider) FetchUSDTEUR(ctx context.Context) (decimal.Decimal, error) {
	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}

	if err := fetchJSON(ctx, p.client, p.baseURL+"/latest?base=USD&symbols=EUR", &payload); err != nil {
		return decimal.Zero, err
	}

	return eurRateFromMap(payload.Rates)
}

// ExchangerateAPIProvider — последний резерв в цепочке.
type ExchangerateAPIProvider struct {
	client  *http.Client
	baseURL string
}

func NewExchangerateAPIProvider() *ExchangerateAPIProvider {
	return &ExchangerateAPIProvider{
		client:  newHTTPClient(),
		baseURL: "https://open.er-api.com",
	}
}

func (p *ExchangerateAPIProvider) WithBaseURL(url string) *ExchangerateAPIProvider {
	p.baseURL = url
	return p
}

func (p *ExchangerateAPIProvider) Name() string { return "exchangerate-api" }

func (p *ExchangerateAPIProvider) FetchUSDTEUR(ctx context.Context) (decimal.Decimal, error) {
	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}

	if err := fetchJSON(ctx, p.client, p.baseURL+"/v6/latest/USD", &payload); err != nil {
		return decimal.Zero, err
	}

	return eurRateFromMap(payload.Rates)
}

func eurRateFromMap(ratesByCode map[string]float64) (decimal.Decimal, error) {
	eur, ok := ratesByCode["EUR"]
	if !ok || eur <= 0 {
		return decimal.Zero, fmt.Errorf("EUR rate missing in response")
	}

	return decimal.NewFromFloat(eur), nil
}

func newQuote(rate decimal.Decimal, source string) entity.Quote {
	return entity.Quote{
		Pair:       value.Pair{From: value.USDT, To: value.EUR},
		Rate:       rate,
		Source:     source,
		ObservedAt: time.Now(),
	}
}
