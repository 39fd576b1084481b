package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `rub_per_usdt,spread_percent,rsd_per_eur,fix_usdt_eur,rub_margin,cross_margin
"80,5","0,5","117,2",,"1,8","1,6"
,,,,"1,5","1,4"
,,,,"1,2","1,1"
,,,,"1,0","0,9"
,,,,"0,8","0,7"
`

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.True(t, dec("80.5").Equal(cfg.RUBPerUSDT), "rub %s", cfg.RUBPerUSDT)
	assert.True(t, dec("0.5").Equal(cfg.SpreadPercent))
	assert.True(t, dec("117.2").Equal(cfg.RSDPerEUR))
	assert.False(t, cfg.HasFixRate())

	require.Len(t, cfg.RUBTiers, 5)
	require.Len(t, cfg.CrossTiers, 5)

	// Тиры привязаны к фиксированным порогам, последний безграничен.
	assert.True(t, dec("500").Equal(cfg.RUBTiers[0].Max.Decimal))
	assert.True(t, dec("10000").Equal(cfg.RUBTiers[4].Min))
	assert.False(t, cfg.RUBTiers[4].Max.Valid)

	// Маржа читается по EUR-эквиваленту.
	assert.True(t, dec("1.8").Equal(cfg.RUBTiers.MarginFor(dec("100"))))
	assert.True(t, dec("1.4").Equal(cfg.CrossTiers.MarginFor(dec("700"))))
	assert.True(t, dec("0.7").Equal(cfg.CrossTiers.MarginFor(dec("50000"))))
}

func TestParseConfigFixRate(t *testing.T) {
	t.Parallel()

	csv := `h1,h2,h3,h4,h5,h6
80,1,117,"0,95","1,5","1,5"
`

	cfg, err := ParseConfig(strings.NewReader(csv))
	require.NoError(t, err)

	require.True(t, cfg.HasFixRate())
	assert.True(t, dec("0.95").Equal(cfg.FixUSDTEUR.Decimal))

	// Одна строка тиров: единственный тир покрывает всё.
	require.Len(t, cfg.RUBTiers, 1)
	assert.False(t, cfg.RUBTiers[0].Max.Valid)
	assert.True(t, dec("1.5").Equal(cfg.RUBTiers.MarginFor(dec("99999"))))
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name string
		csv  string
	}{
		{name: "empty sheet", csv: ""},
		{name: "header only", csv: "a,b,c,d,e,f\n"},
		{name: "missing columns", csv: "a,b\n80,1\n"},
		{name: "garbage rate", csv: "a,b,c,d,e,f\nabc,1,117,,1,1\n"},
		{name: "garbage margin", csv: "a,b,c,d,e,f\n80,1,117,,xx,1\n"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseConfig(strings.NewReader(tc.csv))
			require.Error(t, err)
		})
	}
}

func TestClientCachesSnapshot(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Minute)

	for i := 0; i < 3; i++ {
		cfg, err := client.Current(context.Background())
		require.NoError(t, err)
		assert.True(t, dec("80.5").Equal(cfg.RUBPerUSDT))
	}

	assert.Equal(t, int32(1), hits.Load())

	// Refresh ходит мимо кэша.
	_, err := client.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClientServesLastKnownOnFailure(t *testing.T) {
	t.Parallel()

	var broken atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if broken.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Nanosecond)

	_, err := client.Current(context.Background())
	require.NoError(t, err)

	broken.Store(true)
	time.Sleep(time.Millisecond)

	// Кэш протух, таблица лежит: служит последний известный снимок.
	cfg, err := client.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, dec("117.2").Equal(cfg.RSDPerEUR))
}

func TestClientFailsWithoutAnySnapshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Minute)

	_, err := client.Current(context.Background())
	require.Error(t, err)
}
