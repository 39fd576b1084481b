package persistence

import (
	"time"

	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/value"
)

func decimalToNull(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// curatorSchema — внутренняя структура для маппинга строки БД.
type curatorSchema struct {
	ID                int64           `db:"id"`
	Name              string          `db:"name"`
	TelegramUsername  string          `db:"telegram_username"`
	Phone             string          `db:"phone"`
	Notes             string          `db:"notes"`
	EURBalance        decimal.Decimal `db:"eur_balance"`
	AvgEURCost        decimal.Decimal `db:"avg_eur_cost"`
	TotalEURPurchased decimal.Decimal `db:"total_eur_purchased"`
	TotalUSDTSpent    decimal.Decimal `db:"total_usdt_spent"`
	ProfitUSDT        decimal.Decimal `db:"profit_usdt"`
	Active            bool            `db:"active"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (s *curatorSchema) toDomain() *entity.Curator {
	return &entity.Curator{
		ID:                s.ID,
		Name:              s.Name,
		TelegramUsername:  s.TelegramUsername,
		Phone:             s.Phone,
		Notes:             s.Notes,
		EURBalance:        s.EURBalance,
		AvgEURCost:        s.AvgEURCost,
		TotalEURPurchased: s.TotalEURPurchased,
		TotalUSDTSpent:    s.TotalUSDTSpent,
		ProfitUSDT:        s.ProfitUSDT,
		Active:            s.Active,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type purchaseSchema struct {
	ID        int64           `db:"id"`
	CuratorID int64           `db:"curator_id"`
	EURAmount decimal.Decimal `db:"eur_amount"`
	USDTSpent decimal.Decimal `db:"usdt_spent"`
	Rate      decimal.Decimal `db:"rate"`
	Note      string          `db:"note"`
	CreatedAt time.Time       `db:"created_at"`
}

func (s *purchaseSchema) toDomain() *entity.Purchase {
	return &entity.Purchase{
		ID:        s.ID,
		CuratorID: s.CuratorID,
		EURAmount: s.EURAmount,
		USDTSpent: s.USDTSpent,
		Rate:      s.Rate,
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
	}
}

type dealSchema struct {
	ID            int64               `db:"id"`
	Direction     string              `db:"direction"`
	ClientContact string              `db:"client_contact"`
	GiveAmount    decimal.Decimal     `db:"requested_give_amount"`
	GiveCurrency  string              `db:"requested_give_currency"`
	GetAmount     decimal.Decimal     `db:"requested_receive_amount"`
	GetCurrency   string              `db:"requested_receive_currency"`
	RequestedRate decimal.Decimal     `db:"requested_rate"`
	CuratorID     *int64              `db:"curator_id"`
	EURGiven      decimal.NullDecimal `db:"eur_given"`
	USDTReceived  decimal.NullDecimal `db:"usdt_received"`
	ActualRate    decimal.NullDecimal `db:"actual_rate"`
	EURCostAtDeal decimal.NullDecimal `db:"eur_cost_at_deal"`
	ProfitTotal   decimal.NullDecimal `db:"profit_total"`
	ProfitCurator decimal.NullDecimal `db:"profit_curator"`
	ProfitAgency  decimal.NullDecimal `db:"profit_agency"`
	Status        string              `db:"status"`
	Note          string              `db:"note"`
	CreatedAt     time.Time           `db:"created_at"`
	CompletedAt   *time.Time          `db:"completed_at"`
}

func (s *dealSchema) toDomain() *entity.Deal {
	return &entity.Deal{
		ID:                    s.ID,
		Direction:             s.Direction,
		ClientContact:         s.ClientContact,
		RequestedGiveAmount:   s.GiveAmount,
		RequestedGiveCurrency: value.Currency(s.GiveCurrency),
		RequestedGetAmount:    s.GetAmount,
		RequestedGetCurrency:  value.Currency(s.GetCurrency),
		RequestedRate:         s.RequestedRate,
		CuratorID:             s.CuratorID,
		EURGiven:              s.EURGiven,
		USDTReceived:          s.USDTReceived,
		ActualRate:            s.ActualRate,
		EURCostAtDeal:         s.EURCostAtDeal,
		ProfitTotal:           s.ProfitTotal,
		ProfitCurator:         s.ProfitCurator,
		ProfitAgency:          s.ProfitAgency,
		Status:                entity.DealStatus(s.Status),
		Note:                  s.Note,
		CreatedAt:             s.CreatedAt,
		CompletedAt:           s.CompletedAt,
	}
}
