package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase (откуп) — покупка EUR куратором за USDT. Запись неизменяемая:
// после вставки не редактируется и не удаляется, это аудиторский след
// для сверки себестоимости.
type Purchase struct {
	ID        int64           `json:"id" db:"id"`
	CuratorID int64           `json:"curator_id" db:"curator_id"`
	EURAmount decimal.Decimal `json:"eur_amount" db:"eur_amount"`
	USDTSpent decimal.Decimal `json:"usdt_spent" db:"usdt_spent"`

	// Rate = USDTSpent / EURAmount, курс конкретного откупа.
	Rate decimal.Decimal `json:"rate" db:"rate"`

	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func NewPurchase(curatorID int64, eurAmount, usdtSpent decimal.Decimal, note string) *Purchase {
	return &Purchase{
		CuratorID: curatorID,
		EURAmount: eurAmount,
		USDTSpent: usdtSpent,
		Rate:      usdtSpent.Div(eurAmount),
		Note:      note,
		CreatedAt: time.Now(),
	}
}
