package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateConfig — снимок внешней конфигурации прайсинга (курсы операторских
// легов, спред и таблицы маржи). Приходит из таблицы администратора,
// при недоступности остаётся последний снимок либо дефолты.
type RateConfig struct {
	// RUBPerUSDT — админский курс рублёвого лега (RUB за 1 USDT).
	RUBPerUSDT decimal.Decimal

	// RSDPerEUR — курс динарового лега (RSD за 1 EUR), без маржи.
	RSDPerEUR decimal.Decimal

	// SpreadPercent — откуп: подписанный процент к рыночному курсу,
	// эффективный курс закупки куратора.
	SpreadPercent decimal.Decimal

	// FixUSDTEUR — принудительный курс USDT/EUR. Когда задан, рыночная
	// котировка и спред не используются.
	FixUSDTEUR decimal.NullDecimal

	// RUBTiers — тиры маржи рублёвого лега, CrossTiers — кросс/стейбл лега.
	// Пустая таблица не ошибка: калькулятор подставит встроенный дефолт.
	RUBTiers   MarginTable
	CrossTiers MarginTable

	FetchedAt time.Time
}

// HasFixRate сообщает, включён ли режим фиксированного курса.
func (c RateConfig) HasFixRate() bool {
	return c.FixUSDTEUR.Valid && c.FixUSDTEUR.Decimal.IsPositive()
}
