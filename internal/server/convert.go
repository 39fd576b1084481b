package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/service/pricing"
	"fx_desk/pkg/errcodes"
	"fx_desk/pkg/lox"
	"fx_desk/pkg/rest"
)

const timeFormat = time.RFC3339

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, failure.NewInvalidArgumentError(
			fmt.Sprintf("invalid id %q", raw),
			failure.WithCode(errcodes.ValidationError),
		)
	}

	return id, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("parse amount %q: %w", raw, err),
			failure.WithCode(errcodes.InvalidAmount),
		)
	}

	return amount, nil
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= maxPageLimit {
			limit = parsed
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	return limit, offset
}

func newRESTConversion(conversion pricing.Conversion) rest.Conversion {
	return rest.Conversion{
		From:          conversion.Pair.From.String(),
		To:            conversion.Pair.To.String(),
		GiveAmount:    conversion.GiveAmount.String(),
		GetAmount:     conversion.GetAmount.String(),
		Rate:          conversion.Rate.String(),
		MarginPercent: conversion.MarginPercent.String(),
	}
}

func newRESTRatesSnapshot(cfg entity.RateConfig) rest.RatesSnapshot {
	snapshot := rest.RatesSnapshot{
		RUBPerUSDT:    cfg.RUBPerUSDT.String(),
		RSDPerEUR:     cfg.RSDPerEUR.String(),
		SpreadPercent: cfg.SpreadPercent.String(),
		RUBTiers:      lox.Map(cfg.RUBTiers, newRESTMarginTier),
		CrossTiers:    lox.Map(cfg.CrossTiers, newRESTMarginTier),
	}

	if cfg.HasFixRate() {
		snapshot.USDTEURRate = cfg.FixUSDTEUR.Decimal.String()
		snapshot.RateSource = "fix"
		snapshot.ObservedAt = cfg.FetchedAt.Format(timeFormat)
	}

	return snapshot
}

func newRESTMarginTier(tier entity.MarginTier) rest.MarginTier {
	restTier := rest.MarginTier{
		Min:           tier.Min.String(),
		MarginPercent: tier.Percent.String(),
	}

	if tier.Max.Valid {
		restTier.Max = tier.Max.Decimal.String()
	}

	return restTier
}

func newRESTCurator(curator entity.Curator) rest.Curator {
	return rest.Curator{
		ID:                curator.ID,
		Name:              curator.Name,
		TelegramUsername:  curator.TelegramUsername,
		Phone:             curator.Phone,
		Notes:             curator.Notes,
		EURBalance:        curator.EURBalance.String(),
		AvgEURCost:        curator.AvgEURCost.String(),
		TotalEURPurchased: curator.TotalEURPurchased.String(),
		TotalUSDTSpent:    curator.TotalUSDTSpent.String(),
		ProfitUSDT:        curator.ProfitUSDT.String(),
		Active:            curator.Active,
	}
}

func newRESTCurators(curators []entity.Curator) []rest.Curator {
	return lox.Map(curators, newRESTCurator)
}

func newRESTPurchase(purchase entity.Purchase) rest.Purchase {
	return rest.Purchase{
		ID:        purchase.ID,
		CuratorID: purchase.CuratorID,
		EURAmount: purchase.EURAmount.String(),
		USDTSpent: purchase.USDTSpent.String(),
		Rate:      purchase.Rate.String(),
		Note:      purchase.Note,
		CreatedAt: purchase.CreatedAt.Format(timeFormat),
	}
}

func newRESTPurchases(purchases []entity.Purchase) []rest.Purchase {
	return lox.Map(purchases, newRESTPurchase)
}

func newRESTDeal(deal entity.Deal) rest.Deal {
	restDeal := rest.Deal{
		ID:               deal.ID,
		Direction:        deal.Direction,
		ClientContact:    deal.ClientContact,
		RequestedGive:    deal.RequestedGiveAmount.String(),
		RequestedReceive: deal.RequestedGetAmount.String(),
		RequestedRate:    deal.RequestedRate.String(),
		CuratorID:        deal.CuratorID,
		Status:           string(deal.Status),
		Note:             deal.Note,
		CreatedAt:        deal.CreatedAt.Format(timeFormat),
	}

	if deal.EURGiven.Valid {
		restDeal.EURGiven = deal.EURGiven.Decimal.String()
	}

	if deal.USDTReceived.Valid {
		restDeal.USDTReceived = deal.USDTReceived.Decimal.String()
	}

	if deal.ActualRate.Valid {
		restDeal.ActualRate = deal.ActualRate.Decimal.String()
	}

	if deal.EURCostAtDeal.Valid {
		restDeal.EURCostAtDeal = deal.EURCostAtDeal.Decimal.String()
	}

	if deal.ProfitTotal.Valid {
		restDeal.ProfitTotal = deal.ProfitTotal.Decimal.String()
	}

	if deal.ProfitCurator.Valid {
		restDeal.ProfitCurator = deal.ProfitCurator.Decimal.String()
	}

	if deal.ProfitAgency.Valid {
		restDeal.ProfitAgency = deal.ProfitAgency.Decimal.String()
	}

	if deal.CompletedAt != nil {
		restDeal.CompletedAt = deal.CompletedAt.Format(timeFormat)
	}

	return restDeal
}

func newRESTDeals(deals []entity.Deal) []rest.Deal {
	return lox.Map(deals, newRESTDeal)
}
