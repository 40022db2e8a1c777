package aptos

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aptos-labs/aptos-go-sdk/bcs"
	"golang.org/x/crypto/sha3"
)

// Ed25519Scheme is the authentication key scheme byte for single Ed25519 keys.
const Ed25519Scheme byte = 0x00

// AccountAddress is a 32 byte Aptos account address.
type AccountAddress [32]byte

// ParseAddress accepts long and short hex forms. The 0x prefix is required.
func ParseAddress(s string) (AccountAddress, error) {
	var addr AccountAddress
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return addr, fmt.Errorf("address %q must start with 0x", s)
	}
	raw := s[2:]
	if len(raw) == 0 || len(raw) > 64 {
		return addr, fmt.Errorf("invalid address length: %q", s)
	}
	if len(raw) < 64 {
		raw = strings.Repeat("0", 64-len(raw)) + raw
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(addr[:], b)
	return addr, nil
}

// MustParseAddress is for package level constants only.
func MustParseAddress(s string) AccountAddress {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// AuthKeyAddress is the address of a fresh account controlled by a single Ed25519 key.
func AuthKeyAddress(pub ed25519.PublicKey) AccountAddress {
	var addr AccountAddress
	h := sha3.New256()
	h.Write(pub)
	h.Write([]byte{Ed25519Scheme})
	copy(addr[:], h.Sum(nil))
	return addr
}

// IsSpecial reports whether the address is one of 0x0..0xf, which print in short form.
func (a AccountAddress) IsSpecial() bool {
	for _, b := range a[:31] {
		if b != 0 {
			return false
		}
	}
	return a[31] < 0x10
}

func (a AccountAddress) String() string {
	if a.IsSpecial() {
		return fmt.Sprintf("0x%x", a[31])
	}
	return a.StringLong()
}

func (a AccountAddress) StringLong() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a AccountAddress) MarshalBCS(ser *bcs.Serializer) {
	ser.FixedBytes(a[:])
}

func (a AccountAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
