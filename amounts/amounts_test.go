package amounts

import (
	"testing"
	"time"

	"aptosyield/custody/assets"
	"aptosyield/custody/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDecimals = assets.Descriptor{Symbol: "TEST", Decimals: 1000000, IsFungible: true}

func TestToOnChainScalesByFactor(t *testing.T) {
	got, err := ToOnChain(decimal.RequireFromString("1.5"), sixDecimals)
	require.NoError(t, err)
	assert.Equal(t, uint64(1500000), got)
}

func TestToOnChainRejectsNonPositive(t *testing.T) {
	for _, in := range []string{"0", "-1", "-0.000001"} {
		_, err := ToOnChain(decimal.RequireFromString(in), sixDecimals)
		assert.True(t, errors.Is(err, errors.ErrInvalidAmount), in)
	}
}

func TestToOnChainRejectsDust(t *testing.T) {
	_, err := ToOnChain(decimal.RequireFromString("0.0000001"), sixDecimals)
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))

	// the ceiling variant keeps a single unit
	got, err := ToOnChainCeil(decimal.RequireFromString("0.0000001"), sixDecimals)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)
}

func TestToOnChainRejectsOverflow(t *testing.T) {
	_, err := ToOnChain(decimal.RequireFromString("18446744073709551616"), sixDecimals)
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))
}

func TestRoundingModes(t *testing.T) {
	amount := decimal.RequireFromString("0.0000015")
	cases := map[Rounding]uint64{RoundHalf: 2, RoundCeil: 2, RoundFloor: 1}
	for mode, want := range cases {
		got, err := ToOnChainWith(amount, sixDecimals, mode)
		require.NoError(t, err)
		assert.Equal(t, want, got, "mode %d", mode)
	}

	got, err := ToOnChainWith(decimal.RequireFromString("0.0000014"), sixDecimals, RoundCeil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got)
}

func TestNoFloatingPointDrift(t *testing.T) {
	// 0.29 has no exact binary floating-point form
	apt, err := assets.Lookup(assets.AptosCoin)
	require.NoError(t, err)
	got, err := ToOnChainWith(decimal.RequireFromString("0.29"), apt, RoundFloor)
	require.NoError(t, err)
	assert.Equal(t, uint64(29000000), got)
}

func TestUnknownScalingFactor(t *testing.T) {
	_, err := ToOnChain(decimal.NewFromInt(1), assets.Descriptor{Symbol: "BROKEN"})
	assert.True(t, errors.Is(err, errors.ErrUnknownToken))
}

func TestFromOnChain(t *testing.T) {
	assert.True(t, FromOnChain(0, sixDecimals).IsZero())
	assert.Equal(t, "1.5", FromOnChain(1500000, sixDecimals).String())
}

func TestRoundTripEveryAsset(t *testing.T) {
	for _, asset := range assets.All() {
		for _, raw := range []uint64{1, 7, 999999, 123456789} {
			back, err := ToOnChain(FromOnChain(raw, asset), asset)
			require.NoError(t, err, asset.Symbol)
			assert.InDelta(t, float64(raw), float64(back), 1, asset.Symbol)
		}
	}
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("2.25")
	require.NoError(t, err)
	assert.Equal(t, "2.25", d.String())

	for _, in := range []string{"", "abc", "NaN", "Inf"} {
		_, err := ParseAmount(in)
		assert.True(t, errors.Is(err, errors.ErrInvalidAmount), in)
	}
}

func TestExtremeExponentsRejectedQuickly(t *testing.T) {
	for _, in := range []string{"1e10000000", "1e-10000000", "-1e10000000", "123e41"} {
		start := time.Now()
		d, err := decimal.NewFromString(in)
		require.NoError(t, err, in)

		_, err = ToOnChain(d, sixDecimals)
		assert.True(t, errors.Is(err, errors.ErrInvalidAmount), in)
		assert.Less(t, len(err.Error()), 100, in)

		_, err = ParseAmount(in)
		assert.True(t, errors.Is(err, errors.ErrInvalidAmount), in)
		assert.Less(t, time.Since(start), time.Second, in)
	}
}

func TestParseAmountBounds(t *testing.T) {
	d, err := ParseAmount("1e3")
	require.NoError(t, err)
	assert.Equal(t, "1000", d.String())

	d, err = ParseAmount(" 0.000000000000000000000000000000000000000000000000000000000000001 ")
	require.NoError(t, err)
	assert.Equal(t, int32(-63), d.Exponent())

	_, err = ParseAmount("18446744073709551616000000000000000000000")
	assert.True(t, errors.Is(err, errors.ErrInvalidAmount))
}
