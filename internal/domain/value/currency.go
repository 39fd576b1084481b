package value

import (
	"fmt"
	"strings"
)

// Currency — код валюты, участвующей в обмене.
// EUR — референсная валюта (по ней выбирается тир маржи),
// USDT — расчётная валюта (в ней считается себестоимость и прибыль).
type Currency string

const (
	USDT Currency = "USDT"
	EUR  Currency = "EUR"
	RUB  Currency = "RUB"
	RSD  Currency = "RSD"
)

func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case USDT, EUR, RUB, RSD:
		return c, nil
	default:
		return "", fmt.Errorf("unknown currency %q", s)
	}
}

func (c Currency) String() string {
	return string(c)
}

// Pair — направление обмена: отдаём From, получаем To.
type Pair struct {
	From Currency
	To   Currency
}

func NewPair(from, to string) (Pair, error) {
	f, err := ParseCurrency(from)
	if err != nil {
		return Pair{}, err
	}

	t, err := ParseCurrency(to)
	if err != nil {
		return Pair{}, err
	}

	if f == t {
		return Pair{}, fmt.Errorf("same currency on both sides: %s", f)
	}

	return Pair{From: f, To: t}, nil
}

func (p Pair) String() string {
	return fmt.Sprintf("%s → %s", p.From, p.To)
}

func (p Pair) Reversed() Pair {
	return Pair{From: p.To, To: p.From}
}
