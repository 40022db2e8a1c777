package sponsorship

import (
	"context"
	"testing"

	"aptosyield/custody/blockchains/aptos"
	"aptosyield/custody/common"
	"aptosyield/custody/errors"
	"aptosyield/custody/wallet"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sponsorKey = "0x5d996aa76b3212142792d9130796cd2e11e3c445a93118c08414df4f66bc60ec"

var sender = aptos.MustParseAddress("0xabc")

type fakeBalances struct {
	octas uint64
	err   error
	reads int
}

func (f *fakeBalances) GasBalance(context.Context, aptos.AccountAddress) (uint64, error) {
	f.reads++
	return f.octas, f.err
}

func sponsor(t *testing.T) *wallet.KeyPair {
	t.Helper()
	kp, err := wallet.FromPrivateKeyHex(sponsorKey)
	require.NoError(t, err)
	return kp
}

func boolPtr(b bool) *bool { return &b }

func TestDecideByThreshold(t *testing.T) {
	p := NewPolicy(DefaultMinGasThreshold, sponsor(t))

	d, err := p.Decide(sender, decimal.RequireFromString("0.009"), nil)
	require.NoError(t, err)
	assert.True(t, d.Required)
	assert.NotNil(t, d.Signer())

	d, err = p.Decide(sender, decimal.RequireFromString("0.01"), nil)
	require.NoError(t, err)
	assert.False(t, d.Required)
	assert.Nil(t, d.Signer())
}

func TestExplicitPreferenceWins(t *testing.T) {
	p := NewPolicy(DefaultMinGasThreshold, sponsor(t))

	d, err := p.Decide(sender, decimal.NewFromInt(100), boolPtr(true))
	require.NoError(t, err)
	assert.True(t, d.Required)

	d, err = p.Decide(sender, decimal.Zero, boolPtr(false))
	require.NoError(t, err)
	assert.False(t, d.Required)
}

func TestMissingSponsorFailsClosed(t *testing.T) {
	p := NewPolicy(DefaultMinGasThreshold, nil)

	d, err := p.Decide(sender, decimal.Zero, boolPtr(true))
	assert.ErrorIs(t, err, errors.ErrSponsorKeyMissing)
	assert.Nil(t, d.Signer())

	_, err = p.Decide(sender, decimal.Zero, nil)
	assert.ErrorIs(t, err, errors.ErrSponsorKeyMissing)

	d, err = p.Decide(sender, decimal.NewFromInt(1), nil)
	require.NoError(t, err)
	assert.False(t, d.Required)
	assert.Empty(t, p.SponsorAddress())
}

func TestResolveReadsBalanceOnlyWhenNeeded(t *testing.T) {
	p := NewPolicy(DefaultMinGasThreshold, sponsor(t))
	ledger := &fakeBalances{octas: 500000}

	d, err := p.Resolve(context.Background(), ledger, sender, boolPtr(false))
	require.NoError(t, err)
	assert.False(t, d.Required)
	assert.Zero(t, ledger.reads)

	d, err = p.Resolve(context.Background(), ledger, sender, nil)
	require.NoError(t, err)
	assert.True(t, d.Required, "0.005 APT is under the threshold")
	assert.Equal(t, 1, ledger.reads)
}

func TestResolveBalanceFailure(t *testing.T) {
	p := NewPolicy(DefaultMinGasThreshold, sponsor(t))
	_, err := p.Resolve(context.Background(), &fakeBalances{err: errors.New("node down")}, sender, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), errors.BalanceError)
}

func TestBalanceFor(t *testing.T) {
	balance, err := BalanceFor(context.Background(), &fakeBalances{octas: 150000000}, sender)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("1.5")))
}

func TestFromConfig(t *testing.T) {
	cfg := &common.Config{Env: &common.ENVConfigs{SponsorPrivateKey: sponsorKey}}
	cfg.L1.Sponsorship.MinGasThreshold = "0.5"

	p, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.True(t, p.MinGasThreshold().Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, sponsor(t).Address().String(), p.SponsorAddress())

	cfg.L1.Sponsorship.MinGasThreshold = "lots"
	_, err = FromConfig(cfg)
	assert.Error(t, err)

	cfg.L1.Sponsorship.MinGasThreshold = ""
	cfg.Env.SponsorPrivateKey = "0xnothex"
	_, err = FromConfig(cfg)
	assert.Error(t, err)

	cfg.Env.SponsorPrivateKey = ""
	p, err = FromConfig(cfg)
	require.NoError(t, err)
	assert.True(t, p.MinGasThreshold().Equal(DefaultMinGasThreshold))
	assert.Empty(t, p.SponsorAddress())
}
