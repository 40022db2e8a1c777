package aptos

import (
	"context"
	"fmt"
	"time"

	"aptosyield/custody/errors"
)

const (
	DefaultMaxGasAmount uint64 = 200000
	DefaultExpiration          = 60 * time.Second
)

// LedgerReader supplies the metadata a transaction needs before it can be signed.
type LedgerReader interface {
	SequenceNumber(ctx context.Context, addr AccountAddress) (uint64, error)
	ChainID(ctx context.Context) (uint8, error)
	GasUnitPrice(ctx context.Context) (uint64, error)
}

// Envelope is a built, unsigned transaction. Treat it as read-only.
type Envelope struct {
	Sender                  AccountAddress `json:"sender"`
	FunctionID              string         `json:"functionId"`
	TypeArguments           []string       `json:"typeArguments"`
	Arguments               []Argument     `json:"functionArguments"`
	FeePayerRequested       bool           `json:"feePayerRequested"`
	SequenceNumber          uint64         `json:"sequenceNumber"`
	MaxGasAmount            uint64         `json:"maxGasAmount"`
	GasUnitPrice            uint64         `json:"gasUnitPrice"`
	ExpirationTimestampSecs uint64         `json:"expirationTimestampSecs"`
	ChainID                 uint8          `json:"chainId"`

	raw RawTransaction
}

// Raw returns the wire form of the envelope.
func (e Envelope) Raw() RawTransaction {
	return e.raw
}

type Builder struct {
	ledger     LedgerReader
	maxGas     uint64
	expiration time.Duration
	now        func() time.Time
}

// NewBuilder falls back to DefaultMaxGasAmount and DefaultExpiration for zero values.
func NewBuilder(ledger LedgerReader, maxGas uint64, expiration time.Duration) *Builder {
	if maxGas == 0 {
		maxGas = DefaultMaxGasAmount
	}
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Builder{ledger: ledger, maxGas: maxGas, expiration: expiration, now: time.Now}
}

// Build validates the call, reads sender metadata from the ledger and assembles the envelope.
// Nothing is signed here.
func (b *Builder) Build(ctx context.Context, sender AccountAddress, call Call, feePayerRequested bool) (Envelope, error) {
	if call.FunctionID == "" {
		return Envelope{}, fmt.Errorf("%w: missing function id", errors.ErrUnknownFunction)
	}
	payload, err := encodeCall(call)
	if err != nil {
		return Envelope{}, err
	}

	seq, err := b.ledger.SequenceNumber(ctx, sender)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: sequence number: %v", errors.ErrSequenceFetchFailed, err)
	}
	chainID, err := b.ledger.ChainID(ctx)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: chain id: %v", errors.ErrSequenceFetchFailed, err)
	}
	gasPrice, err := b.ledger.GasUnitPrice(ctx)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: gas price: %v", errors.ErrSequenceFetchFailed, err)
	}

	expires := uint64(b.now().Add(b.expiration).Unix())
	typeArgs := append([]string{}, call.TypeArguments...)
	args := append([]Argument{}, call.Arguments...)

	return Envelope{
		Sender:                  sender,
		FunctionID:              call.FunctionID,
		TypeArguments:           typeArgs,
		Arguments:               args,
		FeePayerRequested:       feePayerRequested,
		SequenceNumber:          seq,
		MaxGasAmount:            b.maxGas,
		GasUnitPrice:            gasPrice,
		ExpirationTimestampSecs: expires,
		ChainID:                 chainID,
		raw: RawTransaction{
			Sender:                  sender,
			SequenceNumber:          seq,
			Payload:                 payload,
			MaxGasAmount:            b.maxGas,
			GasUnitPrice:            gasPrice,
			ExpirationTimestampSecs: expires,
			ChainID:                 chainID,
		},
	}, nil
}

func encodeCall(call Call) (EntryFunction, error) {
	fid, err := ParseFunctionID(call.FunctionID)
	if err != nil {
		return EntryFunction{}, err
	}
	entry := EntryFunction{Function: fid}
	for _, t := range call.TypeArguments {
		tag, err := ParseTypeTag(t)
		if err != nil {
			return EntryFunction{}, fmt.Errorf("%w: type argument: %v", errors.ErrUnknownFunction, err)
		}
		entry.TypeArgs = append(entry.TypeArgs, tag)
	}
	for i, a := range call.Arguments {
		encoded, err := a.Encode()
		if err != nil {
			return EntryFunction{}, fmt.Errorf("%w: argument %d: %v", errors.ErrUnknownFunction, i, err)
		}
		entry.Args = append(entry.Args, encoded)
	}
	return entry, nil
}
