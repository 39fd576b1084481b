package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"fx_desk/internal/domain/entity"
)

func TestMarginTableMarginFor(t *testing.T) {
	t.Parallel()

	table := entity.MarginTable{
		{
			Min:     decimal.Zero,
			Max:     decimal.NullDecimal{Decimal: decimal.NewFromInt(500), Valid: true},
			Percent: decimal.NewFromFloat(2.5),
		},
		{
			Min:     decimal.NewFromInt(500),
			Max:     decimal.NullDecimal{Decimal: decimal.NewFromInt(5000), Valid: true},
			Percent: decimal.NewFromFloat(1.5),
		},
		{
			Min:     decimal.NewFromInt(5000),
			Percent: decimal.NewFromInt(1),
		},
	}

	tt := []struct {
		name   string
		amount decimal.Decimal
		want   string
	}{
		{"нижняя граница первого тира", decimal.Zero, "2.5"},
		{"внутри первого тира", decimal.NewFromInt(499), "2.5"},
		{"граница тиров уходит вверх", decimal.NewFromInt(500), "1.5"},
		{"внутри среднего тира", decimal.NewFromInt(4999), "1.5"},
		{"безграничный последний тир", decimal.NewFromInt(1000000), "1"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := table.MarginFor(tc.amount)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestMarginTableEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("пустая таблица", func(t *testing.T) {
		t.Parallel()

		assert.True(t, entity.MarginTable{}.MarginFor(decimal.NewFromInt(100)).IsZero())
	})

	t.Run("отрицательный процент берётся по модулю", func(t *testing.T) {
		t.Parallel()

		table := entity.MarginTable{{Min: decimal.Zero, Percent: decimal.NewFromFloat(-1.5)}}
		assert.Equal(t, "1.5", table.MarginFor(decimal.NewFromInt(10)).String())
	})

	t.Run("дефолтная двухтировая таблица", func(t *testing.T) {
		t.Parallel()

		table := entity.DefaultMarginTable(
			decimal.NewFromInt(50),
			decimal.NewFromFloat(1.5),
			decimal.NewFromInt(1),
		)

		assert.Equal(t, "1.5", table.MarginFor(decimal.NewFromInt(49)).String())
		assert.Equal(t, "1", table.MarginFor(decimal.NewFromInt(50)).String())
	})
}
