package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Curator — посредник, держащий инвентарь EUR, из которого выплачиваются
// клиентские сделки. Балансы и себестоимость принадлежат только куратору;
// сделки ссылаются на него по ID (слабая ссылка).
type Curator struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	TelegramUsername string    `json:"telegram_username" db:"telegram_username"`
	Phone            string    `json:"phone" db:"phone"`
	Notes            string    `json:"notes" db:"notes"`

	// EURBalance не может стать отрицательным: из него выдаются клиентские
	// выплаты, проверка идёт до любой мутации.
	EURBalance decimal.Decimal `json:"eur_balance" db:"eur_balance"`

	// AvgEURCost == TotalUSDTSpent / TotalEURPurchased при TotalEURPurchased > 0.
	// Скользящее средневзвешенное, не FIFO/LIFO: каждая новая покупка
	// перемешивается со всем накопленным инвентарём.
	AvgEURCost        decimal.Decimal `json:"avg_eur_cost" db:"avg_eur_cost"`
	TotalEURPurchased decimal.Decimal `json:"total_eur_purchased" db:"total_eur_purchased"`
	TotalUSDTSpent    decimal.Decimal `json:"total_usdt_spent" db:"total_usdt_spent"`

	// ProfitUSDT — накопленная доля куратора от закрытых сделок.
	ProfitUSDT decimal.Decimal `json:"profit_usdt" db:"profit_usdt"`

	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ApplyPurchase пересчитывает накопительные итоги после откупа.
func (c *Curator) ApplyPurchase(eurAmount, usdtSpent decimal.Decimal) {
	c.EURBalance = c.EURBalance.Add(eurAmount)
	c.TotalEURPurchased = c.TotalEURPurchased.Add(eurAmount)
	c.TotalUSDTSpent = c.TotalUSDTSpent.Add(usdtSpent)
	c.AvgEURCost = c.TotalUSDTSpent.Div(c.TotalEURPurchased)
}

// ApplySettlement списывает выданные EUR и начисляет долю прибыли.
// Достаточность баланса и активность куратора проверяются до вызова,
// под блокировкой строки.
func (c *Curator) ApplySettlement(eurGiven, curatorProfit decimal.Decimal) {
	c.EURBalance = c.EURBalance.Sub(eurGiven)
	c.ProfitUSDT = c.ProfitUSDT.Add(curatorProfit)
}
