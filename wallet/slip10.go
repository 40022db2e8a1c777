package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"runtime"
)

const (
	ed25519SeedKey = "ed25519 seed"
	hardenedOffset = 0x80000000
)

// AptosPath is m/44'/637'/0'/0'/0'. Ed25519 only supports hardened children.
var AptosPath = []uint32{44, 637, 0, 0, 0}

// deriveEd25519 walks a SLIP-0010 ed25519 path from a BIP-39 seed and returns the 32 byte private seed.
func deriveEd25519(seed []byte, path []uint32) []byte {
	key, chain := hmacSplit([]byte(ed25519SeedKey), seed)
	data := make([]byte, 37)
	for _, index := range path {
		data[0] = 0
		copy(data[1:33], key)
		binary.BigEndian.PutUint32(data[33:], index|hardenedOffset)
		nextKey, nextChain := hmacSplit(chain, data)
		wipe(key)
		wipe(chain)
		key, chain = nextKey, nextChain
	}
	wipe(data)
	wipe(chain)
	return key
}

func hmacSplit(key, data []byte) ([]byte, []byte) {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

//go:noinline
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b)
}
