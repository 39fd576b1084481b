package entity

import "github.com/shopspring/decimal"

// SettlementInput — фактические итоги сделки, сообщаемые админом при
// закрытии. ActualRate опционален и хранится как справка.
type SettlementInput struct {
	CuratorID    int64
	EURGiven     decimal.Decimal
	USDTReceived decimal.Decimal
	ActualRate   decimal.NullDecimal

	// CuratorShare — доля куратора в прибыли (0..1), приходит из политики
	// площадки на момент закрытия.
	CuratorShare decimal.Decimal
}

// Settlement — расчёт закрытия сделки: себестоимость выданных EUR по
// зафиксированному avgCost и делёж прибыли по политике площадки.
type Settlement struct {
	EURCostAtDeal decimal.Decimal
	CostInUSDT    decimal.Decimal
	ProfitTotal   decimal.Decimal
	ProfitCurator decimal.Decimal
	ProfitAgency  decimal.Decimal
}

// ComputeSettlement считает прибыль сделки. Отрицательная прибыль —
// легальный исход (невыгодная сделка), не ошибка. curatorShare — доля
// куратора (0..1), остаток уходит агентству.
func ComputeSettlement(avgCost, eurGiven, usdtReceived, curatorShare decimal.Decimal) Settlement {
	cost := eurGiven.Mul(avgCost)
	profit := usdtReceived.Sub(cost)
	curatorProfit := profit.Mul(curatorShare)

	return Settlement{
		EURCostAtDeal: avgCost,
		CostInUSDT:    cost,
		ProfitTotal:   profit,
		ProfitCurator: curatorProfit,
		ProfitAgency:  profit.Sub(curatorProfit),
	}
}
