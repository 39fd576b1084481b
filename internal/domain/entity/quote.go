package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/value"
)

// Quote — сырая рыночная котировка: сколько единиц котируемой валюты дают
// за 1 единицу базовой.
type Quote struct {
	Pair       value.Pair
	Rate       decimal.Decimal
	Source     string
	ObservedAt time.Time
}

// Age возвращает возраст котировки на момент вызова.
func (q Quote) Age() time.Duration {
	return time.Since(q.ObservedAt)
}
