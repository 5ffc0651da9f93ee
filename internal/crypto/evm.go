// Package crypto holds the small EVM key helpers shared by the scan engine
// and the keystore operations.
package crypto

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// PrivToHex renders a private key as 0x-prefixed hex, the form stored in
// found records and accepted back by HexToECDSA.
func PrivToHex(priv *ecdsa.PrivateKey) string {
	return hexutil.Encode(gethcrypto.FromECDSA(priv))
}

// AddressHex returns the checksummed address for a private key.
func AddressHex(priv *ecdsa.PrivateKey) string {
	return gethcrypto.PubkeyToAddress(priv.PublicKey).Hex()
}

// KeystoreJSON encrypts a private key into a V3 keystore blob with standard
// scrypt parameters. Each blob gets a fresh id so external wallet tooling
// accepts it.
func KeystoreJSON(priv *ecdsa.PrivateKey, password string) ([]byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	key := &keystore.Key{
		Id:         id,
		Address:    gethcrypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}
	return keystore.EncryptKey(key, password, keystore.StandardScryptN, keystore.StandardScryptP)
}
