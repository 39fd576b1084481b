package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/value"
)

type DealStatus string

const (
	DealPending   DealStatus = "pending"
	DealCompleted DealStatus = "completed"
	DealCancelled DealStatus = "cancelled"
)

// IsTerminal — из completed и cancelled переходов нет.
func (s DealStatus) IsTerminal() bool {
	return s == DealCompleted || s == DealCancelled
}

// Deal — клиентская заявка на обмен от создания до закрытия или отмены.
// CuratorID заполняется при закрытии и остаётся слабой ссылкой: удаление
// куратора не трогает историю сделок.
type Deal struct {
	ID            int64      `json:"id" db:"id"`
	Direction     string     `json:"direction" db:"direction"`
	ClientContact string     `json:"client_contact" db:"client_contact"`

	RequestedGiveAmount    decimal.Decimal `json:"requested_give_amount" db:"requested_give_amount"`
	RequestedGiveCurrency  value.Currency  `json:"requested_give_currency" db:"requested_give_currency"`
	RequestedGetAmount     decimal.Decimal `json:"requested_receive_amount" db:"requested_receive_amount"`
	RequestedGetCurrency   value.Currency  `json:"requested_receive_currency" db:"requested_receive_currency"`
	RequestedRate          decimal.Decimal `json:"requested_rate" db:"requested_rate"`

	CuratorID    *int64               `json:"curator_id" db:"curator_id"`
	EURGiven     decimal.NullDecimal  `json:"eur_given" db:"eur_given"`
	USDTReceived decimal.NullDecimal  `json:"usdt_received" db:"usdt_received"`
	ActualRate   decimal.NullDecimal  `json:"actual_rate" db:"actual_rate"`

	// EURCostAtDeal — себестоимость EUR куратора, зафиксированная в момент
	// закрытия. Последующие откупы не пересчитывают прибыль закрытых сделок.
	EURCostAtDeal decimal.NullDecimal `json:"eur_cost_at_deal" db:"eur_cost_at_deal"`
	ProfitTotal   decimal.NullDecimal `json:"profit_total" db:"profit_total"`
	ProfitCurator decimal.NullDecimal `json:"profit_curator" db:"profit_curator"`
	ProfitAgency  decimal.NullDecimal `json:"profit_agency" db:"profit_agency"`

	Status      DealStatus `json:"status" db:"status"`
	Note        string     `json:"note" db:"note"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
}

// DealFilter — параметры выборки сделок. Нулевые значения игнорируются.
type DealFilter struct {
	Status    DealStatus
	CuratorID *int64
	Limit     int
	Offset    int
}
