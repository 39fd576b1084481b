package entity

import "github.com/shopspring/decimal"

// MarginTier — диапазон EUR-эквивалента суммы и процент маржи для него.
// Max с Valid=false означает неограниченный верхний предел (последний тир).
type MarginTier struct {
	Min     decimal.Decimal
	Max     decimal.NullDecimal
	Percent decimal.Decimal
}

// MarginTable — упорядоченный по Min набор непересекающихся тиров.
// Таблица отвечает только за величину маржи; знак её применения
// (в пользу оператора) решает калькулятор.
type MarginTable []MarginTier

// MarginFor возвращает процент маржи для EUR-эквивалента суммы: первый тир,
// где Min <= amount < Max (безграничный Max покрывает все amount >= Min).
// Для сумм ниже первого тира и при пустой таблице отвечает дефолтами
// вызывающая сторона; здесь при промахе берётся последний тир, чтобы
// прайсинг никогда не падал из-за дырки в конфигурации.
func (t MarginTable) MarginFor(amount decimal.Decimal) decimal.Decimal {
	for _, tier := range t {
		if !tier.Max.Valid {
			if amount.GreaterThanOrEqual(tier.Min) {
				return tier.Percent.Abs()
			}
			continue
		}

		if amount.GreaterThanOrEqual(tier.Min) && amount.LessThan(tier.Max.Decimal) {
			return tier.Percent.Abs()
		}
	}

	if len(t) == 0 {
		return decimal.Zero
	}

	return t[len(t)-1].Percent.Abs()
}

// DefaultMarginTable — встроенный двухтировый фолбэк: до порога берём
// повышенную маржу, выше — пониженную. Используется, когда внешняя
// конфигурация недоступна, чтобы прайсинг не отказывал совсем.
func DefaultMarginTable(threshold, smallPercent, largePercent decimal.Decimal) MarginTable {
	return MarginTable{
		{
			Min:     decimal.Zero,
			Max:     decimal.NullDecimal{Decimal: threshold, Valid: true},
			Percent: smallPercent,
		},
		{
			Min:     threshold,
			Percent: largePercent,
		},
	}
}
