// Package wallet re-derives custodial Aptos accounts from a user identity and a process-wide salt.
// Keys are never stored; the same identity and salt always give the same account.
package wallet

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"aptosyield/custody/blockchains/aptos"
	"aptosyield/custody/errors"

	"github.com/tyler-smith/go-bip39"
)

// aip80Prefix is the AIP-80 private key prefix some wallets export.
const aip80Prefix = "ed25519-priv-"

type Identity struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

func (i Identity) validate() error {
	if strings.TrimSpace(i.Email) == "" {
		return fmt.Errorf("%w: email is required", errors.ErrInvalidIdentity)
	}
	if strings.TrimSpace(i.UserID) == "" {
		return fmt.Errorf("%w: userId is required", errors.ErrInvalidIdentity)
	}
	return nil
}

// KeyPair is an Ed25519 account. It satisfies aptos.Signer.
type KeyPair struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
	address aptos.AccountAddress
}

func newKeyPair(seed []byte) *KeyPair {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &KeyPair{private: priv, public: pub, address: aptos.AuthKeyAddress(pub)}
}

func (k *KeyPair) Address() aptos.AccountAddress { return k.address }

func (k *KeyPair) PublicKey() ed25519.PublicKey { return k.public }

func (k *KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.private, message)
}

// PrivateKeyHex exports the key for the CLI only.
func (k *KeyPair) PrivateKeyHex() string {
	return "0x" + hex.EncodeToString(k.private.Seed())
}

// String never prints key material.
func (k *KeyPair) String() string {
	return "KeyPair(" + k.address.String() + ")"
}

// FromPrivateKeyHex loads a 32 byte Ed25519 private key, with or without 0x and the ed25519-priv- prefix.
func FromPrivateKeyHex(s string) (*KeyPair, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), aip80Prefix)
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not hex", errors.ErrInvalidIdentity)
	}
	defer wipe(raw)
	switch len(raw) {
	case ed25519.SeedSize:
		return newKeyPair(raw), nil
	case ed25519.PrivateKeySize:
		return newKeyPair(raw[:ed25519.SeedSize]), nil
	}
	return nil, fmt.Errorf("%w: private key must be %d bytes", errors.ErrInvalidIdentity, ed25519.SeedSize)
}

// Deriver holds the derivation salt. It is safe for concurrent use.
type Deriver struct {
	salt string
}

func NewDeriver(salt string) *Deriver {
	return &Deriver{salt: salt}
}

func (d *Deriver) Derive(id Identity) (*KeyPair, error) {
	return Derive(id, d.salt)
}

// Address is Derive without handing the key to the caller.
func (d *Deriver) Address(id Identity) (aptos.AccountAddress, error) {
	kp, err := d.Derive(id)
	if err != nil {
		return aptos.AccountAddress{}, err
	}
	return kp.Address(), nil
}

// Derive maps email-userId-salt through SHA-256, a 12 word BIP-39 mnemonic and the Aptos SLIP-0010 path.
func Derive(id Identity, salt string) (*KeyPair, error) {
	mnemonic, err := SeedPhrase(id, salt)
	if err != nil {
		return nil, err
	}
	return FromMnemonic(mnemonic)
}

// SeedPhrase returns the mnemonic behind a derived account. Callers must not log it.
func SeedPhrase(id Identity, salt string) (string, error) {
	if err := id.validate(); err != nil {
		return "", err
	}
	digest := sha256.Sum256([]byte(id.Email + "-" + id.UserID + "-" + salt))
	defer wipe(digest[:])

	mnemonic, err := bip39.NewMnemonic(digest[:16])
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrDerivationFailure, err)
	}
	return mnemonic, nil
}

// FromMnemonic derives the first Aptos account of a BIP-39 mnemonic with an empty passphrase.
func FromMnemonic(mnemonic string) (*KeyPair, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDerivationFailure, err)
	}
	defer wipe(seed)

	key := deriveEd25519(seed, AptosPath)
	defer wipe(key)
	return newKeyPair(key), nil
}
