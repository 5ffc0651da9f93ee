package mnemonic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletscan/internal/crypto"
)

const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestDeriveIsDeterministic(t *testing.T) {
	for _, useHD := range []bool{true, false} {
		d := NewDeriver(useHD)
		a, err := d.Derive("ripple wood fiscal tragic inner salad more tragic spend coach twelve tooth", 0)
		require.NoError(t, err)
		b, err := d.Derive("ripple wood fiscal tragic inner salad more tragic spend coach twelve tooth", 0)
		require.NoError(t, err)

		assert.Equal(t, a.Address, b.Address)
		assert.Equal(t, crypto.PrivToHex(a.Priv), crypto.PrivToHex(b.Priv))
	}
}

func TestDeriveKnownVector(t *testing.T) {
	// m/44'/60'/0'/0/0 of the standard all-abandon mnemonic.
	d := NewDeriver(true)
	acct, err := d.Derive(testPhrase, 0)
	require.NoError(t, err)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", acct.Address)
	assert.Equal(t, "m/44'/60'/0'/0/0", acct.Path)
}

func TestDeriveIndexSelectsDifferentAccounts(t *testing.T) {
	d := NewDeriver(true)
	a, err := d.Derive(testPhrase, 0)
	require.NoError(t, err)
	b, err := d.Derive(testPhrase, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.Address, b.Address)
}

func TestDeriveSeedPrefixFallback(t *testing.T) {
	hd := NewDeriver(true)
	flat := NewDeriver(false)

	a, err := hd.Derive(testPhrase, 0)
	require.NoError(t, err)
	b, err := flat.Derive(testPhrase, 0)
	require.NoError(t, err)

	// the fallback takes seed[:32] directly, so the account differs from HD
	assert.NotEqual(t, a.Address, b.Address)
	assert.Empty(t, b.Path)
}

func TestDeriveAcceptsChecksumInvalidPhrases(t *testing.T) {
	// drawn uniformly, with no checksum constraint; derivation must still work
	d := NewDeriver(true)
	acct, err := d.Derive("abc def ghi abc def ghi abc def ghi abc def ghi", 0)
	require.NoError(t, err)
	assert.Len(t, acct.Address, 42)
	assert.Equal(t, "0x", acct.Address[:2])
}
