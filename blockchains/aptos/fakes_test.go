package aptos

import (
	"context"
	"crypto/ed25519"
	"sync"
)

type fakeLedger struct {
	seq      uint64
	chainID  uint8
	gasPrice uint64
	err      error
	reads    int
}

func (f *fakeLedger) SequenceNumber(context.Context, AccountAddress) (uint64, error) {
	f.reads++
	return f.seq, f.err
}

func (f *fakeLedger) ChainID(context.Context) (uint8, error) { return f.chainID, f.err }

func (f *fakeLedger) GasUnitPrice(context.Context) (uint64, error) { return f.gasPrice, f.err }

type fakeSubmitter struct {
	mu       sync.Mutex
	hash     string
	err      error
	payloads [][]byte
}

func (f *fakeSubmitter) SubmitBCS(_ context.Context, signedTx []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, signedTx)
	return f.hash, f.err
}

// fakeStatus returns statuses in order, repeating the last one.
type fakeStatus struct {
	mu       sync.Mutex
	statuses []*TransactionStatus
	err      error
	calls    int
}

func (f *fakeStatus) TransactionByHash(context.Context, string) (*TransactionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if i < 0 {
		return nil, nil
	}
	return f.statuses[i], nil
}

type testSigner struct {
	priv   ed25519.PrivateKey
	signed int
}

func newTestSigner(b byte) *testSigner {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return &testSigner{priv: ed25519.NewKeyFromSeed(seed)}
}

func (s *testSigner) Address() AccountAddress { return AuthKeyAddress(s.PublicKey()) }

func (s *testSigner) PublicKey() ed25519.PublicKey { return s.priv.Public().(ed25519.PublicKey) }

func (s *testSigner) Sign(message []byte) []byte {
	s.signed++
	return ed25519.Sign(s.priv, message)
}
