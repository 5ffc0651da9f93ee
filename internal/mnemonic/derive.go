package mnemonic

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	bip39 "github.com/tyler-smith/go-bip39"
)

// ErrDerivation marks a failed phrase→key derivation. Non-fatal: the
// candidate is dropped and the scan continues.
var ErrDerivation = errors.New("derivation failed")

// DerivedAccount is a phrase turned into key material. Owned by the worker
// that created it and never mutated afterwards.
type DerivedAccount struct {
	Address string
	Priv    *ecdsa.PrivateKey
	Phrase  string
	Index   int
	Path    string
}

// Deriver turns seed phrases into accounts. When HD support is enabled it
// derives at m/44'/60'/0'/0/<index>; when disabled, or when the HD wallet
// rejects the seed, it falls back to the first 32 seed bytes as the private
// key. Whether HD is available is decided once at construction, not probed
// per call.
type Deriver struct {
	useHD bool
}

func NewDeriver(useHD bool) *Deriver {
	return &Deriver{useHD: useHD}
}

// Derive is deterministic: the same (phrase, index) pair always yields the
// same address and private key. The phrase is not checksum-validated.
func (d *Deriver) Derive(phrase string, index int) (*DerivedAccount, error) {
	seed := bip39.NewSeed(phrase, "")

	var (
		priv    *ecdsa.PrivateKey
		pathStr string
	)
	if d.useHD {
		priv, pathStr = deriveHD(seed, index)
	}
	if priv == nil {
		p, err := gethcrypto.ToECDSA(seed[:32])
		if err != nil {
			return nil, fmt.Errorf("%w: seed prefix key: %v", ErrDerivation, err)
		}
		priv = p
		pathStr = ""
	}

	return &DerivedAccount{
		Address: gethcrypto.PubkeyToAddress(priv.PublicKey).Hex(),
		Priv:    priv,
		Phrase:  phrase,
		Index:   index,
		Path:    pathStr,
	}, nil
}

func deriveHD(seed []byte, index int) (*ecdsa.PrivateKey, string) {
	w, err := hdwallet.NewFromSeed(seed)
	if err != nil {
		return nil, ""
	}
	pathStr := fmt.Sprintf("m/44'/60'/0'/0/%d", index)
	path, err := hdwallet.ParseDerivationPath(pathStr)
	if err != nil {
		return nil, ""
	}
	acct, err := w.Derive(path, false)
	if err != nil {
		return nil, ""
	}
	priv, err := w.PrivateKey(acct)
	if err != nil {
		return nil, ""
	}
	return priv, pathStr
}
