package server

import (
	"context"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/service/pricing"
	"fx_desk/internal/domain/value"
	"fx_desk/pkg/errcodes"
	"fx_desk/pkg/httpx/reply"
	"fx_desk/pkg/httpx/req"
	"fx_desk/pkg/rest"
)

type calculator interface {
	Convert(ctx context.Context, pair value.Pair, giveAmount decimal.Decimal) (pricing.Conversion, error)
	SolveGive(ctx context.Context, pair value.Pair, desiredGet decimal.Decimal) (pricing.Conversion, error)
}

type quoteSource interface {
	USDTEUR(ctx context.Context) (entity.Quote, error)
}

type configSource interface {
	Current(ctx context.Context) (entity.RateConfig, error)
	Refresh(ctx context.Context) (entity.RateConfig, error)
}

type RateServer struct {
	calculator calculator
	quotes     quoteSource
	config     configSource
}

func NewRateServer(calc calculator, quotes quoteSource, config configSource) RateServer {
	return RateServer{
		calculator: calc,
		quotes:     quotes,
		config:     config,
	}
}

func (s RateServer) postV1Rate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ConversionRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	pair, err := value.NewPair(request.From, request.To)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.NewPair: %w", err),
			failure.WithCode(errcodes.UnsupportedPair),
		)
	}

	amount, err := parseAmount(request.Amount)
	if err != nil {
		return err
	}

	var conversion pricing.Conversion
	if request.Fixed == "receive" {
		conversion, err = s.calculator.SolveGive(ctx, pair, amount)
	} else {
		conversion, err = s.calculator.Convert(ctx, pair, amount)
	}
	if err != nil {
		return fmt.Errorf("calculator: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTConversion(conversion))

	return nil
}

func (s RateServer) getV1Rates(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	cfg, err := s.config.Current(ctx)
	if err != nil {
		return fmt.Errorf("config.Current: %w", err)
	}

	snapshot := newRESTRatesSnapshot(cfg)

	// В FIX-режиме рыночная котировка не участвует в прайсинге, но для
	// техпанели всё равно показывается, если доступна.
	if quote, err := s.quotes.USDTEUR(ctx); err == nil {
		snapshot.USDTEURRate = quote.Rate.String()
		snapshot.RateSource = quote.Source
		snapshot.ObservedAt = quote.ObservedAt.Format(timeFormat)
	}

	reply.JSON(ctx, w, http.StatusOK, snapshot)

	return nil
}

func (s RateServer) postV1RatesRefresh(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	cfg, err := s.config.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("config.Refresh: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTRatesSnapshot(cfg))

	return nil
}
