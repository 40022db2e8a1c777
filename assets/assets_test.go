package assets

import (
	"testing"

	"aptosyield/custody/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByTokenAndSymbol(t *testing.T) {
	apt, err := Lookup(AptosCoin)
	require.NoError(t, err)
	assert.Equal(t, "APT", apt.Symbol)
	assert.False(t, apt.IsFungible)
	assert.Equal(t, int64(100000000), apt.Decimals)

	usdc, err := Lookup("usdc")
	require.NoError(t, err)
	assert.True(t, usdc.IsFungible)

	byID, err := Lookup(usdc.Token)
	require.NoError(t, err)
	assert.Equal(t, usdc, byID)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("0x1::fake::Coin")
	assert.True(t, errors.Is(err, errors.ErrUnknownToken))
}

func TestTableInvariants(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range All() {
		assert.False(t, seen[normalize(d.Token)], "duplicate token %s", d.Token)
		seen[normalize(d.Token)] = true
		assert.Positive(t, d.Decimals, d.Symbol)
		if d.IsFungible {
			assert.NotContains(t, d.Token, "::", "fungible assets are addressed by metadata object: %s", d.Symbol)
		} else {
			assert.Contains(t, d.Token, "::", "coins are addressed by type: %s", d.Symbol)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	list[0].Symbol = "CHANGED"
	apt, err := Lookup(AptosCoin)
	require.NoError(t, err)
	assert.Equal(t, "APT", apt.Symbol)
}

func TestLookupAcceptsLongAddressForms(t *testing.T) {
	apt, err := Lookup("0x0000000000000000000000000000000000000000000000000000000000000001::aptos_coin::AptosCoin")
	require.NoError(t, err)
	assert.Equal(t, "APT", apt.Symbol)

	apt, err = Lookup("0x01::aptos_coin::AptosCoin")
	require.NoError(t, err)
	assert.Equal(t, "APT", apt.Symbol)

	usdc, err := Lookup("0xBAE207659DB88BEA0CBEAD6DA0ED00AAC12EDCDDA169E591CD41C94180B46F3B")
	require.NoError(t, err)
	assert.Equal(t, "USDC", usdc.Symbol)

	_, err = Lookup("0x0000000000000000000000000000000000000000000000000000000000000002::aptos_coin::AptosCoin")
	assert.True(t, errors.Is(err, errors.ErrUnknownToken))
}
