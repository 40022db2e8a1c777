package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
	"testing"

	"aptosyield/custody/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vectorMnemonic = "shoot island position soft burden budget tooth cruel issue economy destroy above"
	vectorPrivate  = "0x5d996aa76b3212142792d9130796cd2e11e3c445a93118c08414df4f66bc60ec"
	vectorPublic   = "ea526ba1710343d953461ff68641f1b7df5f23b9042ffa2d2a798d3adb3f3d6c"
	vectorAddress  = "0x07968dab936c1bad187c60ce4082f307d030d780e91e694ae03aef16aba73f30"
)

func TestDeriveIsDeterministic(t *testing.T) {
	id := Identity{Email: "a@x.com", UserID: "42"}

	first, err := Derive(id, "s")
	require.NoError(t, err)
	second, err := Derive(id, "s")
	require.NoError(t, err)

	assert.Equal(t, first.Address(), second.Address())
	assert.Equal(t, first.PublicKey(), second.PublicKey())
	assert.Equal(t, first.PrivateKeyHex(), second.PrivateKeyHex())
}

func TestDeriveDependsOnEveryInput(t *testing.T) {
	base, err := Derive(Identity{Email: "a@x.com", UserID: "42"}, "s")
	require.NoError(t, err)

	for name, tc := range map[string]struct {
		id   Identity
		salt string
	}{
		"salt":   {Identity{Email: "a@x.com", UserID: "42"}, "t"},
		"email":  {Identity{Email: "b@x.com", UserID: "42"}, "s"},
		"userId": {Identity{Email: "a@x.com", UserID: "43"}, "s"},
	} {
		t.Run(name, func(t *testing.T) {
			other, err := Derive(tc.id, tc.salt)
			require.NoError(t, err)
			assert.NotEqual(t, base.Address(), other.Address())
		})
	}
}

func TestDeriveRejectsEmptyIdentity(t *testing.T) {
	_, err := Derive(Identity{Email: "", UserID: "42"}, "s")
	assert.True(t, errors.Is(err, errors.ErrInvalidIdentity))

	_, err = Derive(Identity{Email: "a@x.com", UserID: " "}, "s")
	assert.True(t, errors.Is(err, errors.ErrInvalidIdentity))
}

func TestSeedPhraseMatchesDerivation(t *testing.T) {
	id := Identity{Email: "a@x.com", UserID: "42"}
	phrase, err := SeedPhrase(id, "s")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(phrase), 12)

	fromPhrase, err := FromMnemonic(phrase)
	require.NoError(t, err)
	derived, err := Derive(id, "s")
	require.NoError(t, err)
	assert.Equal(t, derived.Address(), fromPhrase.Address())
}

func TestFromMnemonicKnownAccount(t *testing.T) {
	kp, err := FromMnemonic(vectorMnemonic)
	require.NoError(t, err)

	assert.Equal(t, vectorPrivate, kp.PrivateKeyHex())
	assert.Equal(t, vectorPublic, hex.EncodeToString(kp.PublicKey()))
	assert.Equal(t, vectorAddress, kp.Address().StringLong())
}

func TestFromMnemonicRejectsUnknownWords(t *testing.T) {
	_, err := FromMnemonic("shoot island position soft burden budget tooth cruel issue economy destroy notaword")
	assert.True(t, errors.Is(err, errors.ErrDerivationFailure))
}

func TestFromPrivateKeyHexPrefixes(t *testing.T) {
	for _, in := range []string{
		vectorPrivate,
		vectorPrivate[2:],
		"ed25519-priv-" + vectorPrivate,
	} {
		kp, err := FromPrivateKeyHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, vectorAddress, kp.Address().StringLong())
	}

	_, err := FromPrivateKeyHex("0x1234")
	assert.True(t, errors.Is(err, errors.ErrInvalidIdentity))
	_, err = FromPrivateKeyHex("not hex")
	assert.True(t, errors.Is(err, errors.ErrInvalidIdentity))
}

func TestKeyPairSignsAndHidesKey(t *testing.T) {
	kp, err := FromPrivateKeyHex(vectorPrivate)
	require.NoError(t, err)

	msg := []byte("message")
	assert.True(t, ed25519.Verify(kp.PublicKey(), msg, kp.Sign(msg)))
	assert.NotContains(t, kp.String(), vectorPrivate[2:])
}

func TestDeriverUsesItsSalt(t *testing.T) {
	id := Identity{Email: "a@x.com", UserID: "42"}
	want, err := Derive(id, "s")
	require.NoError(t, err)

	got, err := NewDeriver("s").Address(id)
	require.NoError(t, err)
	assert.Equal(t, want.Address(), got)
}

// SLIP-0010 ed25519 test vector 1.
func TestSLIP10Vector(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")

	master := deriveEd25519(seed, nil)
	assert.Equal(t, "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7", hex.EncodeToString(master))
	pub := ed25519.NewKeyFromSeed(master).Public().(ed25519.PublicKey)
	assert.Equal(t, "a4b2856bfec510abab89753fac1ac0e1112364e7d250545963f135f2a33188ed", hex.EncodeToString(pub))

	child := deriveEd25519(seed, []uint32{0})
	assert.Equal(t, "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3", hex.EncodeToString(child))
}
