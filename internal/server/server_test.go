package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx_desk/internal/domain"
	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/service/ledger"
	"fx_desk/internal/domain/service/pricing"
	"fx_desk/internal/domain/value"
	"fx_desk/pkg/errcodes"
	"fx_desk/pkg/rest"
	"fx_desk/pkg/tests"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type stubCalculator struct{}

func (stubCalculator) Convert(_ context.Context, pair value.Pair, give decimal.Decimal) (pricing.Conversion, error) {
	if pair.From == value.RUB {
		return pricing.Conversion{}, domain.NewError(errcodes.QuoteUnavailable, "no admin rate configured for RUB leg")
	}

	get := give.Mul(dec("0.9"))

	return pricing.Conversion{
		Pair:          pair,
		GiveAmount:    give,
		GetAmount:     get,
		Rate:          dec("0.9"),
		MarginPercent: dec("1.5"),
	}, nil
}

func (c stubCalculator) SolveGive(ctx context.Context, pair value.Pair, desired decimal.Decimal) (pricing.Conversion, error) {
	give := desired.Div(dec("0.9"))

	return c.Convert(ctx, pair, give)
}

type stubQuotes struct{}

func (stubQuotes) USDTEUR(_ context.Context) (entity.Quote, error) {
	return entity.Quote{
		Pair:       value.Pair{From: value.USDT, To: value.EUR},
		Rate:       dec("0.92"),
		Source:     "stub",
		ObservedAt: time.Now(),
	}, nil
}

type stubConfig struct{}

func (stubConfig) Current(_ context.Context) (entity.RateConfig, error) {
	return entity.RateConfig{
		RUBPerUSDT:    dec("80"),
		RSDPerEUR:     dec("117"),
		SpreadPercent: dec("0.5"),
		RUBTiers:      entity.DefaultMarginTable(dec("50"), dec("1.5"), dec("1")),
		CrossTiers:    entity.DefaultMarginTable(dec("5000"), dec("1.5"), dec("1")),
		FetchedAt:     time.Now(),
	}, nil
}

func (c stubConfig) Refresh(ctx context.Context) (entity.RateConfig, error) {
	return c.Current(ctx)
}

type stubLedger struct {
	curator *entity.Curator
	deal    *entity.Deal
	err     error
}

func (s *stubLedger) CreateCurator(_ context.Context, input ledger.CreateCuratorInput) (*entity.Curator, error) {
	if s.err != nil {
		return nil, s.err
	}

	curator := *s.curator
	curator.Name = input.Name

	return &curator, nil
}

func (s *stubLedger) GetCurator(_ context.Context, id int64) (*entity.Curator, error) {
	if s.err != nil {
		return nil, s.err
	}

	if s.curator == nil || s.curator.ID != id {
		return nil, domain.NewError(errcodes.CuratorNotFound, "curator not found")
	}

	return s.curator, nil
}

func (s *stubLedger) ListCurators(_ context.Context, _ bool) ([]entity.Curator, error) {
	if s.curator == nil {
		return nil, nil
	}

	return []entity.Curator{*s.curator}, nil
}

func (s *stubLedger) UpdateCurator(_ context.Context, _ int64, input ledger.UpdateCuratorInput) (*entity.Curator, error) {
	curator := *s.curator
	curator.Name = input.Name
	curator.Active = input.Active

	return &curator, nil
}

func (s *stubLedger) DeactivateCurator(_ context.Context, id int64) (*entity.Curator, error) {
	if s.curator == nil || s.curator.ID != id {
		return nil, domain.NewError(errcodes.CuratorNotFound, "curator not found")
	}

	curator := *s.curator
	curator.Active = false

	return &curator, nil
}

func (s *stubLedger) RecordPurchase(_ context.Context, input ledger.PurchaseInput) (*entity.Purchase, *entity.Curator, error) {
	if s.err != nil {
		return nil, nil, s.err
	}

	return entity.NewPurchase(input.CuratorID, input.EURAmount, input.USDTSpent, input.Note), s.curator, nil
}

func (s *stubLedger) ListPurchases(_ context.Context, _ int64, _, _ int) ([]entity.Purchase, error) {
	return nil, nil
}

func (s *stubLedger) CreateDeal(_ context.Context, input ledger.CreateDealInput) (*entity.Deal, error) {
	if s.err != nil {
		return nil, s.err
	}

	deal := *s.deal
	deal.Direction = input.Pair.String()

	return &deal, nil
}

func (s *stubLedger) GetDeal(_ context.Context, id int64) (*entity.Deal, error) {
	if s.deal == nil || s.deal.ID != id {
		return nil, domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	return s.deal, nil
}

func (s *stubLedger) ListDeals(_ context.Context, _ entity.DealFilter) ([]entity.Deal, error) {
	if s.deal == nil {
		return nil, nil
	}

	return []entity.Deal{*s.deal}, nil
}

func (s *stubLedger) SettleDeal(_ context.Context, _ int64, _ ledger.SettleDealInput) (*entity.Deal, error) {
	if s.err != nil {
		return nil, s.err
	}

	return s.deal, nil
}

func (s *stubLedger) CancelDeal(_ context.Context, _ int64) (*entity.Deal, error) {
	deal := *s.deal
	deal.Status = entity.DealCancelled

	return &deal, nil
}

func newTestAPI(t *testing.T, stub *stubLedger) tests.APIClient {
	t.Helper()

	srv := NewServer(
		NewRateServer(stubCalculator{}, stubQuotes{}, stubConfig{}),
		NewCuratorServer(stub),
		NewDealServer(stub),
	)

	router := chi.NewRouter()
	srv.RegisterRoutes(router)

	testServer := httptest.NewServer(router)
	t.Cleanup(testServer.Close)

	return tests.NewAPIClient(testServer.URL, nil)
}

func defaultStub() *stubLedger {
	return &stubLedger{
		curator: &entity.Curator{
			ID:         7,
			Name:       "Milan",
			EURBalance: dec("1500"),
			AvgEURCost: dec("1.06"),
			Active:     true,
		},
		deal: &entity.Deal{
			ID:                    11,
			Direction:             "USDT → EUR",
			RequestedGiveAmount:   dec("220"),
			RequestedGiveCurrency: value.USDT,
			RequestedGetAmount:    dec("200"),
			RequestedGetCurrency:  value.EUR,
			RequestedRate:         dec("0.909"),
			Status:                entity.DealPending,
			CreatedAt:             time.Now(),
		},
	}
}

func TestPostRate(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, defaultStub())
	ctx := context.Background()

	var conversion rest.Conversion

	resp, err := api.Post(ctx, "/v1/rate", nil, rest.ConversionRequest{
		From:   "USDT",
		To:     "EUR",
		Amount: "100",
		Fixed:  "give",
	}, &conversion, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "USDT", conversion.From)
	assert.Equal(t, "90", conversion.GetAmount)
	assert.Equal(t, "1.5", conversion.MarginPercent)
}

func TestPostRateReverse(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, defaultStub())
	ctx := context.Background()

	var conversion rest.Conversion

	resp, err := api.Post(ctx, "/v1/rate", nil, rest.ConversionRequest{
		From:   "USDT",
		To:     "EUR",
		Amount: "90",
		Fixed:  "receive",
	}, &conversion, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "100", conversion.GiveAmount)
}

func TestPostRateValidation(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, defaultStub())
	ctx := context.Background()

	tt := []struct {
		name       string
		request    rest.ConversionRequest
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown currency",
			request:    rest.ConversionRequest{From: "XXX", To: "EUR", Amount: "100"},
			wantStatus: http.StatusBadRequest,
			wantCode:   errcodes.UnsupportedPair.String(),
		},
		{
			name:       "garbage amount",
			request:    rest.ConversionRequest{From: "USDT", To: "EUR", Amount: "abc"},
			wantStatus: http.StatusBadRequest,
			wantCode:   errcodes.InvalidAmount.String(),
		},
		{
			name:       "missing fields",
			request:    rest.ConversionRequest{Amount: "100"},
			wantStatus: http.StatusBadRequest,
			wantCode:   errcodes.ValidationError.String(),
		},
		{
			name:       "quote unavailable maps to 500",
			request:    rest.ConversionRequest{From: "RUB", To: "EUR", Amount: "100"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   errcodes.InternalServerError.String(),
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var apiErr apiError

			resp, err := api.Post(ctx, "/v1/rate", nil, tc.request, nil, &apiErr)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantCode, apiErr.Code)
		})
	}
}

func TestGetRates(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, defaultStub())

	var snapshot rest.RatesSnapshot

	resp, err := api.Get(context.Background(), "/v1/rates", nil, &snapshot, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "80", snapshot.RUBPerUSDT)
	assert.Equal(t, "0.92", snapshot.USDTEURRate)
	assert.Equal(t, "stub", snapshot.RateSource)
	require.Len(t, snapshot.CrossTiers, 2)
	assert.Equal(t, "5000", snapshot.CrossTiers[0].Max)
	assert.Empty(t, snapshot.CrossTiers[1].Max)
}

func TestCuratorEndpoints(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, defaultStub())
	ctx := context.Background()

	var created rest.Curator

	resp, err := api.Post(ctx, "/v1/curators", nil, rest.CreateCuratorRequest{Name: "Vera"}, &created, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Vera", created.Name)

	var fetched rest.Curator

	resp, err = api.Get(ctx, "/v1/curators/7", nil, &fetched, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.06", fetched.AvgEURCost)

	var apiErr apiError

	resp, err = api.Get(ctx, "/v1/curators/404", nil, nil, &apiErr)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errcodes.CuratorNotFound.String(), apiErr.Code)

	var purchase rest.Purchase

	resp, err = api.Post(ctx, "/v1/curators/7/purchases", nil, rest.PurchaseRequest{
		EURAmount: "1000",
		USDTSpent: "1050",
	}, &purchase, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "1.05", purchase.Rate)

	var deactivated rest.Curator

	resp, err = api.Delete(ctx, "/v1/curators/7", nil, &deactivated, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, deactivated.Active)
}

func TestDealEndpoints(t *testing.T) {
	t.Parallel()

	stub := defaultStub()
	api := newTestAPI(t, stub)
	ctx := context.Background()

	var created rest.Deal

	resp, err := api.Post(ctx, "/v1/deals", nil, rest.CreateDealRequest{
		FromCurrency:  "USDT",
		ToCurrency:    "EUR",
		GiveAmount:    "220",
		ReceiveAmount: "200",
		Rate:          "0.909",
		ClientContact: "@client",
	}, &created, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "USDT → EUR", created.Direction)

	var cancelled rest.Deal

	resp, err = api.Post(ctx, "/v1/deals/11/cancel", nil, struct{}{}, &cancelled, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(entity.DealCancelled), cancelled.Status)
}

func TestDealSettleErrorMapping(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "insufficient balance",
			err:        domain.NewError(errcodes.InsufficientBalance, "not enough EUR"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   errcodes.InsufficientBalance.String(),
		},
		{
			name:       "already closed",
			err:        domain.NewError(errcodes.InvalidDealState, "deal is already completed"),
			wantStatus: http.StatusConflict,
			wantCode:   errcodes.InvalidDealState.String(),
		},
		{
			name:       "deal not found",
			err:        domain.NewError(errcodes.DealNotFound, "deal not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   errcodes.DealNotFound.String(),
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stub := defaultStub()
			stub.err = tc.err
			api := newTestAPI(t, stub)

			var apiErr apiError

			resp, err := api.Post(context.Background(), "/v1/deals/11/settle", nil, rest.SettlementRequest{
				CuratorID:    7,
				EURGiven:     "200",
				USDTReceived: "220",
			}, nil, &apiErr)
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantCode, apiErr.Code)
		})
	}
}
