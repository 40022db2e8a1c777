package aptos

import (
	"context"
	"testing"
	"time"

	"aptosyield/custody/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder(ledger LedgerReader) *Builder {
	b := NewBuilder(ledger, 0, 0)
	b.now = func() time.Time { return time.Unix(1700000000, 0) }
	return b
}

func TestBuildFillsMetadata(t *testing.T) {
	ledger := &fakeLedger{seq: 7, chainID: 2, gasPrice: 100}
	sender := MustParseAddress(fixtureSender)
	call := Call{
		FunctionID:    "0x1::aptos_account::transfer_coins",
		TypeArguments: []string{"0x1::aptos_coin::AptosCoin"},
		Arguments:     []Argument{{ArgAddress, "0x2"}, {ArgU64, "100"}},
	}

	env, err := testBuilder(ledger).Build(context.Background(), sender, call, true)
	require.NoError(t, err)

	assert.Equal(t, sender, env.Sender)
	assert.True(t, env.FeePayerRequested)
	assert.Equal(t, uint64(7), env.SequenceNumber)
	assert.Equal(t, uint8(2), env.ChainID)
	assert.Equal(t, uint64(100), env.GasUnitPrice)
	assert.Equal(t, DefaultMaxGasAmount, env.MaxGasAmount)
	assert.Equal(t, uint64(1700000060), env.ExpirationTimestampSecs)

	raw := env.Raw()
	assert.Equal(t, env.SequenceNumber, raw.SequenceNumber)
	assert.Len(t, raw.Payload.TypeArgs, 1)
	assert.Len(t, raw.Payload.Args, 2)
}

func TestBuildIsIdempotent(t *testing.T) {
	ledger := &fakeLedger{seq: 1, chainID: 2, gasPrice: 100}
	b := testBuilder(ledger)
	call := Call{FunctionID: "0x1::aptos_account::transfer_coins", TypeArguments: []string{"0x1::aptos_coin::AptosCoin"}, Arguments: []Argument{{ArgAddress, "0x2"}, {ArgU64, "1"}}}

	first, err := b.Build(context.Background(), MustParseAddress("0xa"), call, false)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), MustParseAddress("0xa"), call, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// the envelope keeps its own copy of the call
	call.Arguments[1].Value = "2"
	assert.Equal(t, "1", first.Arguments[1].Value)
}

func TestBuildShapeFollowsAssetKind(t *testing.T) {
	ledger := &fakeLedger{chainID: 2, gasPrice: 100}
	b := testBuilder(ledger)
	sender := MustParseAddress("0xa")

	coinCall, err := CallFor(ProtocolAptos, ActionTransfer, mustAsset(t, "APT"), CallInputs{Receiver: "0x2", Amount: 1})
	require.NoError(t, err)
	coinEnv, err := b.Build(context.Background(), sender, coinCall, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"0x1::aptos_coin::AptosCoin"}, coinEnv.TypeArguments)

	usdc := mustAsset(t, "USDC")
	faCall, err := CallFor(ProtocolAptos, ActionTransfer, usdc, CallInputs{Receiver: "0x2", Amount: 1})
	require.NoError(t, err)
	faEnv, err := b.Build(context.Background(), sender, faCall, false)
	require.NoError(t, err)
	assert.Empty(t, faEnv.TypeArguments)
	assert.Equal(t, usdc.Token, faEnv.Arguments[0].Value)
}

func TestBuildRejectsMalformedCallBeforeReadingLedger(t *testing.T) {
	ledger := &fakeLedger{}
	b := testBuilder(ledger)

	for _, call := range []Call{
		{},
		{FunctionID: "transfer"},
		{FunctionID: "0x1::m::f", TypeArguments: []string{"vector<"}},
		{FunctionID: "0x1::m::f", Arguments: []Argument{{ArgU64, "x"}}},
	} {
		_, err := b.Build(context.Background(), MustParseAddress("0xa"), call, false)
		assert.True(t, errors.Is(err, errors.ErrUnknownFunction), call)
	}
	assert.Zero(t, ledger.reads)
}

func TestBuildWrapsLedgerFailure(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("connection refused")}
	_, err := testBuilder(ledger).Build(context.Background(), MustParseAddress("0xa"), Call{FunctionID: "0x1::m::f"}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSequenceFetchFailed))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, ledger.reads)
}
