package aptos

import (
	"crypto/ed25519"

	"github.com/aptos-labs/aptos-go-sdk/bcs"
	"golang.org/x/crypto/sha3"
)

// Domain separators hashed into every signing message.
const (
	rawTransactionSalt         = "APTOS::RawTransaction"
	rawTransactionWithDataSalt = "APTOS::RawTransactionWithData"
	transactionSalt            = "APTOS::Transaction"
)

// Enum variants used on the wire.
const (
	rawTxWithDataFeePayer uint32 = 1

	txAuthEd25519  uint32 = 0
	txAuthFeePayer uint32 = 3

	accountAuthEd25519 uint32 = 0

	transactionUser uint32 = 0
)

// RawTransaction is the unsigned transaction body.
type RawTransaction struct {
	Sender                  AccountAddress
	SequenceNumber          uint64
	Payload                 EntryFunction
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	ExpirationTimestampSecs uint64
	ChainID                 uint8
}

func (r RawTransaction) MarshalBCS(ser *bcs.Serializer) {
	r.Sender.MarshalBCS(ser)
	ser.U64(r.SequenceNumber)
	r.Payload.MarshalBCS(ser)
	ser.U64(r.MaxGasAmount)
	ser.U64(r.GasUnitPrice)
	ser.U64(r.ExpirationTimestampSecs)
	ser.U8(r.ChainID)
}

// feePayerRawTransaction is RawTransactionWithData::MultiAgentWithFeePayer with no secondary signers.
type feePayerRawTransaction struct {
	Raw      RawTransaction
	FeePayer AccountAddress
}

func (f feePayerRawTransaction) MarshalBCS(ser *bcs.Serializer) {
	ser.Uleb128(rawTxWithDataFeePayer)
	f.Raw.MarshalBCS(ser)
	ser.Uleb128(0)
	f.FeePayer.MarshalBCS(ser)
}

func prefixed(salt string, body bcs.Marshaler) ([]byte, error) {
	payload, err := bcs.Serialize(body)
	if err != nil {
		return nil, err
	}
	return prefixedBytes(salt, payload), nil
}

// SigningMessage is what the sender signs for a transaction without a fee payer.
func (r RawTransaction) SigningMessage() ([]byte, error) {
	return prefixed(rawTransactionSalt, r)
}

// FeePayerSigningMessage is what both sender and fee payer sign for a sponsored transaction.
func (r RawTransaction) FeePayerSigningMessage(feePayer AccountAddress) ([]byte, error) {
	return prefixed(rawTransactionWithDataSalt, feePayerRawTransaction{Raw: r, FeePayer: feePayer})
}

// Ed25519Authenticator is a public key and a signature over a signing message.
type Ed25519Authenticator struct {
	PublicKey ed25519.PublicKey
	Signature []byte
}

func (a Ed25519Authenticator) marshalKeyAndSig(ser *bcs.Serializer) {
	ser.WriteBytes(a.PublicKey)
	ser.WriteBytes(a.Signature)
}

// accountAuthenticator is AccountAuthenticator::Ed25519.
type accountAuthenticator struct{ Ed25519Authenticator }

func (a accountAuthenticator) MarshalBCS(ser *bcs.Serializer) {
	ser.Uleb128(accountAuthEd25519)
	a.marshalKeyAndSig(ser)
}

// SignedTransaction pairs a raw transaction with its sender and optional fee payer authenticators.
type SignedTransaction struct {
	Raw      RawTransaction
	Sender   Ed25519Authenticator
	FeePayer *FeePayerAuthenticator
}

// FeePayerAuthenticator is the sponsor half of a fee-payer transaction.
type FeePayerAuthenticator struct {
	Address AccountAddress
	Ed25519Authenticator
}

func (s SignedTransaction) MarshalBCS(ser *bcs.Serializer) {
	s.Raw.MarshalBCS(ser)
	if s.FeePayer == nil {
		ser.Uleb128(txAuthEd25519)
		s.Sender.marshalKeyAndSig(ser)
		return
	}
	ser.Uleb128(txAuthFeePayer)
	accountAuthenticator{s.Sender}.MarshalBCS(ser)
	ser.Uleb128(0) // secondary signer addresses
	ser.Uleb128(0) // secondary signers
	s.FeePayer.Address.MarshalBCS(ser)
	accountAuthenticator{s.FeePayer.Ed25519Authenticator}.MarshalBCS(ser)
}

// Bytes is the body POSTed to /transactions.
func (s SignedTransaction) Bytes() ([]byte, error) {
	return bcs.Serialize(s)
}

// Hash is the ledger transaction hash of a signed user transaction.
func (s SignedTransaction) Hash() ([]byte, error) {
	ser := &bcs.Serializer{}
	ser.Uleb128(transactionUser)
	s.MarshalBCS(ser)
	if err := ser.Error(); err != nil {
		return nil, err
	}
	sum := sha3.Sum256(prefixedBytes(transactionSalt, ser.ToBytes()))
	return sum[:], nil
}

func prefixedBytes(salt string, body []byte) []byte {
	prefix := sha3.Sum256([]byte(salt))
	return append(prefix[:], body...)
}
