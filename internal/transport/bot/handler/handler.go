package handler

import (
	"context"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/service/ledger"
	"fx_desk/internal/domain/service/pricing"
)

// ConfigRefresher — принудительная перечитка админской конфигурации.
type ConfigRefresher interface {
	Refresh(ctx context.Context) (entity.RateConfig, error)
}

type Handler struct {
	calc      *pricing.Calculator
	ledger    *ledger.Service
	refresher ConfigRefresher
}

func New(calc *pricing.Calculator, ledgerService *ledger.Service, refresher ConfigRefresher) *Handler {
	return &Handler{
		calc:      calc,
		ledger:    ledgerService,
		refresher: refresher,
	}
}
