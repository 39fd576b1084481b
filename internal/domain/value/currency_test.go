package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx_desk/internal/domain/value"
)

func TestParseCurrency(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"usdt", "USDT", " eur ", "Rub", "rsd"} {
		c, err := value.ParseCurrency(raw)
		require.NoError(t, err, raw)
		assert.NotEmpty(t, c)
	}

	_, err := value.ParseCurrency("usd")
	require.Error(t, err)
}

func TestNewPair(t *testing.T) {
	t.Parallel()

	p, err := value.NewPair("usdt", "eur")
	require.NoError(t, err)
	assert.Equal(t, value.USDT, p.From)
	assert.Equal(t, value.EUR, p.To)
	assert.Equal(t, value.Pair{From: value.EUR, To: value.USDT}, p.Reversed())

	_, err = value.NewPair("eur", "eur")
	require.Error(t, err)

	_, err = value.NewPair("eur", "gbp")
	require.Error(t, err)
}
