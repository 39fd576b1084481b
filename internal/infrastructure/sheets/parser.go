package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fx_desk/internal/domain/entity"
)

// Раскладка CSV-выгрузки админской таблицы: первая строка — заголовок,
// во второй строке A2=курс RUB/USDT, B2=спред в процентах, C2=курс RSD/EUR,
// D2=необязательный FIX-курс USDT/EUR. Колонки E и F строк 2–6 — проценты
// маржи рублёвого и кросс-лега для пяти фиксированных порогов
// EUR-эквивалента.
var tierThresholds = []int64{0, 500, 2000, 5000, 10000} //nolint:gochecknoglobals

const (
	colRUBPerUSDT  = 0
	colSpread      = 1
	colRSDPerEUR   = 2
	colFix         = 3
	colRUBMargin   = 4
	colCrossMargin = 5

	minColumns = 6
)

// ParseConfig читает CSV-выгрузку и собирает снимок конфигурации.
func ParseConfig(r io.Reader) (entity.RateConfig, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return entity.RateConfig{}, fmt.Errorf("read csv: %w", err)
	}

	// Заголовок + строка курсов минимум.
	if len(records) < 2 {
		return entity.RateConfig{}, fmt.Errorf("sheet has %d rows, want at least 2", len(records))
	}

	rates := records[1]
	if len(rates) < minColumns {
		return entity.RateConfig{}, fmt.Errorf("rates row has %d columns, want %d", len(rates), minColumns)
	}

	cfg := entity.RateConfig{FetchedAt: time.Now()}

	if cfg.RUBPerUSDT, err = parseCell(rates[colRUBPerUSDT]); err != nil {
		return entity.RateConfig{}, fmt.Errorf("RUB rate: %w", err)
	}

	if cfg.SpreadPercent, err = parseCell(rates[colSpread]); err != nil {
		return entity.RateConfig{}, fmt.Errorf("spread: %w", err)
	}

	if cfg.RSDPerEUR, err = parseCell(rates[colRSDPerEUR]); err != nil {
		return entity.RateConfig{}, fmt.Errorf("RSD rate: %w", err)
	}

	if fixCell := normalizeCell(rates[colFix]); fixCell != "" {
		fix, err := decimal.NewFromString(fixCell)
		if err != nil {
			return entity.RateConfig{}, fmt.Errorf("fix rate: %w", err)
		}

		cfg.FixUSDTEUR = decimal.NewNullDecimal(fix)
	}

	cfg.RUBTiers, cfg.CrossTiers, err = parseTiers(records[1:])
	if err != nil {
		return entity.RateConfig{}, err
	}

	return cfg, nil
}

// parseTiers собирает обе таблицы маржи из строк 2–6. Неполный набор строк
// не ошибка: собранные тиры работают, последний становится безграничным.
func parseTiers(rows [][]string) (rubTiers, crossTiers entity.MarginTable, err error) {
	for i, threshold := range tierThresholds {
		if i >= len(rows) || len(rows[i]) < minColumns {
			break
		}

		rubCell := normalizeCell(rows[i][colRUBMargin])
		crossCell := normalizeCell(rows[i][colCrossMargin])
		if rubCell == "" || crossCell == "" {
			break
		}

		rubPercent, err := decimal.NewFromString(rubCell)
		if err != nil {
			return nil, nil, fmt.Errorf("tier %d RUB margin: %w", i+1, err)
		}

		crossPercent, err := decimal.NewFromString(crossCell)
		if err != nil {
			return nil, nil, fmt.Errorf("tier %d cross margin: %w", i+1, err)
		}

		min := decimal.NewFromInt(threshold)

		var max decimal.NullDecimal
		if i+1 < len(tierThresholds) {
			max = decimal.NewNullDecimal(decimal.NewFromInt(tierThresholds[i+1]))
		}

		rubTiers = append(rubTiers, entity.MarginTier{Min: min, Max: max, Percent: rubPercent})
		crossTiers = append(crossTiers, entity.MarginTier{Min: min, Max: max, Percent: crossPercent})
	}

	if len(rubTiers) > 0 {
		// Последний собранный тир покрывает всё сверху.
		rubTiers[len(rubTiers)-1].Max = decimal.NullDecimal{}
		crossTiers[len(crossTiers)-1].Max = decimal.NullDecimal{}
	}

	return rubTiers, crossTiers, nil
}

func parseCell(cell string) (decimal.Decimal, error) {
	normalized := normalizeCell(cell)
	if normalized == "" {
		return decimal.Zero, fmt.Errorf("empty cell")
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %q: %w", cell, err)
	}

	return d, nil
}

// normalizeCell чистит пробелы и приводит запятую-разделитель к точке:
// таблица ведётся в локали с десятичной запятой.
func normalizeCell(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.ReplaceAll(cell, " ", "")
	cell = strings.ReplaceAll(cell, " ", "")

	return strings.ReplaceAll(cell, ",", ".")
}
