package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fx_desk/internal/domain"
	"fx_desk/internal/domain/entity"
	"fx_desk/internal/domain/value"
	"fx_desk/pkg/contextx"
	"fx_desk/pkg/errcodes"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	// solveIterations — потолок итераций обратного расчёта. Маржа кусочно-
	// постоянна и монотонна по сумме, внутри тира функция сжимающая,
	// поэтому пяти итераций хватает на всех реалистичных конфигурациях.
	solveIterations = 5
)

var (
	hundred = decimal.NewFromInt(100) //nolint:gochecknoglobals

	// solveTolerance — относительный допуск остановки, 1e-6.
	solveTolerance = decimal.New(1, -6) //nolint:gochecknoglobals

	// Дефолтные двухтировые таблицы на случай отсутствия конфигурации:
	// до порога маржа выше, после — ниже. Пороги и проценты повторяют
	// исторические значения площадки.
	defaultRUBTable   = entity.DefaultMarginTable(decimal.NewFromInt(50), decimal.NewFromFloat(1.5), decimal.NewFromInt(1))   //nolint:gochecknoglobals
	defaultCrossTable = entity.DefaultMarginTable(decimal.NewFromInt(5000), decimal.NewFromFloat(1.5), decimal.NewFromInt(1)) //nolint:gochecknoglobals
)

// QuoteSource отдаёт рыночную котировку USDT/EUR (EUR за 1 USDT) либо
// ошибку, если ни провайдеры, ни кэш не ответили.
type QuoteSource interface {
	USDTEUR(ctx context.Context) (entity.Quote, error)
}

// ConfigSource отдаёт последний снимок административной конфигурации.
type ConfigSource interface {
	Current(ctx context.Context) (entity.RateConfig, error)
}

// Conversion — результат расчёта: отдаваемая и получаемая суммы, итоговый
// клиентский курс и применённая маржа.
type Conversion struct {
	Pair          value.Pair
	GiveAmount    decimal.Decimal
	GetAmount     decimal.Decimal
	Rate          decimal.Decimal
	MarginPercent decimal.Decimal
}

// Calculator — чистый расчёт клиентского курса: спред поверх рыночной
// котировки, тировая маржа по EUR-эквиваленту, многошаговые пары через
// USDT/EUR. Состояния не держит, безопасен для любого параллелизма.
type Calculator struct {
	quotes QuoteSource
	config ConfigSource
}

func NewCalculator(quotes QuoteSource, config ConfigSource) *Calculator {
	return &Calculator{
		quotes: quotes,
		config: config,
	}
}

// env — зафиксированные на один расчёт входные данные, чтобы forward и
// обратный решатель считали по одной и той же котировке.
type env struct {
	cfg      entity.RateConfig
	baseRate decimal.Decimal // EUR за 1 USDT
	fixed    bool            // курс зафиксирован админом, спред не применяется
}

// Convert считает результат обмена при известной отдаваемой сумме.
func (c *Calculator) Convert(ctx context.Context, pair value.Pair, giveAmount decimal.Decimal) (Conversion, error) {
	if !giveAmount.IsPositive() {
		return Conversion{}, domain.NewError(errcodes.InvalidAmount, fmt.Sprintf("amount must be positive, got %s", giveAmount))
	}

	e, err := c.environment(ctx)
	if err != nil {
		return Conversion{}, err
	}

	return c.convert(pair, giveAmount, e, true)
}

// SolveGive решает обратную задачу: клиент зафиксировал получаемую сумму,
// нужно найти отдаваемую. Тировая маржа зависит от EUR-эквивалента
// результата, поэтому закрытой формулы нет — итерация с неподвижной точкой.
// При переборе лимита возвращается последняя итерация (best effort, не
// ошибка). Известное ограничение: на суммах, зависших ровно на границе
// тира, решение может колебаться между двумя тирами.
func (c *Calculator) SolveGive(ctx context.Context, pair value.Pair, desiredGet decimal.Decimal) (Conversion, error) {
	if !desiredGet.IsPositive() {
		return Conversion{}, domain.NewError(errcodes.InvalidAmount, fmt.Sprintf("amount must be positive, got %s", desiredGet))
	}

	e, err := c.environment(ctx)
	if err != nil {
		return Conversion{}, err
	}

	// Сид по безмаржевому курсу.
	seed, err := c.convert(pair, decimal.NewFromInt(1), e, false)
	if err != nil {
		return Conversion{}, err
	}

	guess := desiredGet.Div(seed.Rate)

	for i := 0; i < solveIterations; i++ {
		forward, err := c.convert(pair, guess, e, true)
		if err != nil {
			return Conversion{}, err
		}

		if forward.GetAmount.IsZero() {
			break
		}

		ratio := desiredGet.Div(forward.GetAmount)
		guess = guess.Mul(ratio)

		if ratio.Sub(decimal.NewFromInt(1)).Abs().LessThanOrEqual(solveTolerance) {
			break
		}
	}

	return c.convert(pair, guess, e, true)
}

// environment фиксирует конфигурацию и котировку для одного расчёта.
// Отсутствующая конфигурация — не отказ: остаются дефолтные тиры, а
// направления без админских курсов отклоняются ниже по месту.
func (c *Calculator) environment(ctx context.Context) (env, error) {
	cfg, err := c.config.Current(ctx)
	if err != nil {
		logger(ctx).Warn("rate config unavailable, falling back to defaults", "error", err)

		cfg = entity.RateConfig{}
	}

	if cfg.HasFixRate() {
		return env{cfg: cfg, baseRate: cfg.FixUSDTEUR.Decimal, fixed: true}, nil
	}

	quote, err := c.quotes.USDTEUR(ctx)
	if err != nil {
		return env{}, domain.WrapError(err, errcodes.QuoteUnavailable, "market quote unavailable")
	}

	return env{cfg: cfg, baseRate: quote.Rate}, nil
}

// effectiveRate — курс закупки куратора: рыночный курс со спредом.
// В FIX-режиме спред не применяется, курс уже админский.
func (e env) effectiveRate() decimal.Decimal {
	if e.fixed {
		return e.baseRate
	}

	return e.baseRate.Mul(decimal.NewFromInt(1).Add(e.cfg.SpreadPercent.Div(hundred)))
}

func (e env) rubTable() entity.MarginTable {
	if len(e.cfg.RUBTiers) > 0 {
		return e.cfg.RUBTiers
	}

	return defaultRUBTable
}

func (e env) crossTable() entity.MarginTable {
	if len(e.cfg.CrossTiers) > 0 {
		return e.cfg.CrossTiers
	}

	return defaultCrossTable
}

// convert — один проход форвардного расчёта. Маржа всегда уменьшает
// получаемую сумму, то есть делает курс строго хуже закупочного для
// клиента; withMargin=false используется только для сида обратного
// расчёта.
//
//nolint:funlen // плоский свитч по направлениям читабельнее таблицы переходов
func (c *Calculator) convert(pair value.Pair, give decimal.Decimal, e env, withMargin bool) (Conversion, error) {
	var (
		get    decimal.Decimal
		margin decimal.Decimal
		err    error
	)

	switch {
	case pair.From == value.USDT && pair.To == value.EUR:
		get, margin = c.usdtToEUR(give, e, withMargin)

	case pair.From == value.EUR && pair.To == value.USDT:
		get, margin = c.eurToUSDT(give, e, withMargin)

	case pair.From == value.RUB && pair.To == value.EUR:
		// RUB → USDT по админскому курсу, дальше USDT → EUR с маржой.
		usdt, convErr := c.rubToUSDTRaw(give, e)
		if convErr != nil {
			return Conversion{}, convErr
		}
		get, margin = c.usdtToEUR(usdt, e, withMargin)

	case pair.From == value.EUR && pair.To == value.RUB:
		var usdt decimal.Decimal
		usdt, margin = c.eurToUSDT(give, e, withMargin)
		get, err = c.usdtToRUBRaw(usdt, e)

	case pair.From == value.USDT && pair.To == value.RUB:
		// Маржа рублёвого лега выбирается по EUR-эквиваленту суммы.
		if !e.cfg.RUBPerUSDT.IsPositive() {
			return Conversion{}, errNoAdminRate(value.RUB)
		}

		eurEquivalent := give.Mul(e.baseRate)
		if withMargin {
			margin = e.rubTable().MarginFor(eurEquivalent)
		}
		get = give.Mul(e.cfg.RUBPerUSDT).Mul(oneMinusPercent(margin))

	case pair.From == value.RUB && pair.To == value.USDT:
		usdt, convErr := c.rubToUSDTRaw(give, e)
		if convErr != nil {
			return Conversion{}, convErr
		}

		eurEquivalent := usdt.Mul(e.baseRate)
		if withMargin {
			margin = e.crossTable().MarginFor(eurEquivalent)
		}
		get = usdt.Mul(oneMinusPercent(margin))

	case pair.From == value.RSD && pair.To == value.EUR:
		// Динаровый лег меняется по прямому курсу, маржи нет.
		get, err = c.rsdToEURRaw(give, e)

	case pair.From == value.EUR && pair.To == value.RSD:
		get, err = c.eurToRSDRaw(give, e)

	case pair.From == value.RSD && pair.To == value.USDT:
		eur, convErr := c.rsdToEURRaw(give, e)
		if convErr != nil {
			return Conversion{}, convErr
		}
		get, margin = c.eurToUSDT(eur, e, withMargin)

	case pair.From == value.USDT && pair.To == value.RSD:
		var eur decimal.Decimal
		eur, margin = c.usdtToEUR(give, e, withMargin)
		get, err = c.eurToRSDRaw(eur, e)

	case pair.From == value.RUB && pair.To == value.RSD:
		usdt, convErr := c.rubToUSDTRaw(give, e)
		if convErr != nil {
			return Conversion{}, convErr
		}

		var eur decimal.Decimal
		eur, margin = c.usdtToEUR(usdt, e, withMargin)
		get, err = c.eurToRSDRaw(eur, e)

	case pair.From == value.RSD && pair.To == value.RUB:
		eur, convErr := c.rsdToEURRaw(give, e)
		if convErr != nil {
			return Conversion{}, convErr
		}

		var usdt decimal.Decimal
		usdt, margin = c.eurToUSDT(eur, e, withMargin)
		get, err = c.usdtToRUBRaw(usdt, e)

	default:
		return Conversion{}, domain.NewError(errcodes.UnsupportedPair, fmt.Sprintf("unsupported direction %s", pair))
	}

	if err != nil {
		return Conversion{}, err
	}

	if !get.IsPositive() {
		return Conversion{}, domain.NewError(errcodes.InvalidAmount, fmt.Sprintf("conversion of %s %s yields nothing", give, pair.From))
	}

	return Conversion{
		Pair:          pair,
		GiveAmount:    give,
		GetAmount:     get,
		Rate:          get.Div(give),
		MarginPercent: margin,
	}, nil
}

// usdtToEUR — базовый хоп: спред к котировке, маржа по EUR-эквиваленту
// результата до маржи.
func (c *Calculator) usdtToEUR(usdt decimal.Decimal, e env, withMargin bool) (eur, margin decimal.Decimal) {
	eurBefore := usdt.Mul(e.effectiveRate())

	if withMargin {
		margin = e.crossTable().MarginFor(eurBefore)
	}

	return eurBefore.Mul(oneMinusPercent(margin)), margin
}

// eurToUSDT — обратный хоп; маржа выбирается по самой EUR-сумме.
func (c *Calculator) eurToUSDT(eur decimal.Decimal, e env, withMargin bool) (usdt, margin decimal.Decimal) {
	usdtBefore := eur.Div(e.effectiveRate())

	if withMargin {
		margin = e.crossTable().MarginFor(eur)
	}

	return usdtBefore.Mul(oneMinusPercent(margin)), margin
}

func (c *Calculator) rubToUSDTRaw(rub decimal.Decimal, e env) (decimal.Decimal, error) {
	if !e.cfg.RUBPerUSDT.IsPositive() {
		return decimal.Zero, errNoAdminRate(value.RUB)
	}

	return rub.Div(e.cfg.RUBPerUSDT), nil
}

func (c *Calculator) usdtToRUBRaw(usdt decimal.Decimal, e env) (decimal.Decimal, error) {
	if !e.cfg.RUBPerUSDT.IsPositive() {
		return decimal.Zero, errNoAdminRate(value.RUB)
	}

	return usdt.Mul(e.cfg.RUBPerUSDT), nil
}

func (c *Calculator) rsdToEURRaw(rsd decimal.Decimal, e env) (decimal.Decimal, error) {
	if !e.cfg.RSDPerEUR.IsPositive() {
		return decimal.Zero, errNoAdminRate(value.RSD)
	}

	return rsd.Div(e.cfg.RSDPerEUR), nil
}

func (c *Calculator) eurToRSDRaw(eur decimal.Decimal, e env) (decimal.Decimal, error) {
	if !e.cfg.RSDPerEUR.IsPositive() {
		return decimal.Zero, errNoAdminRate(value.RSD)
	}

	return eur.Mul(e.cfg.RSDPerEUR), nil
}

func oneMinusPercent(percent decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(percent.Div(hundred))
}

func errNoAdminRate(currency value.Currency) error {
	return domain.NewError(errcodes.QuoteUnavailable, fmt.Sprintf("no admin rate configured for %s leg", currency))
}
