package account

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

func AddressFromPrivateKey(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func PrivateKeyFromKeystore(file string, password string) (string, *ecdsa.PrivateKey, error) {
	json, err := os.ReadFile(file)
	if err != nil {
		return "", nil, fmt.Errorf("couldn't read keystore %s: %w", file, err)
	}
	key, err := keystore.DecryptKey(json, password)
	if err != nil {
		return "", nil, fmt.Errorf("couldn't decrypt keystore %s: %w", file, err)
	}
	return AddressFromPrivateKey(key.PrivateKey), key.PrivateKey, nil
}

// works with both 0x prefix form and naked form
func PrivateKeyFromHex(hex string) (string, *ecdsa.PrivateKey, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "0x")
	privkey, err := crypto.HexToECDSA(hex)
	if err != nil {
		return "", nil, fmt.Errorf("invalid private key: %w", err)
	}
	return AddressFromPrivateKey(privkey), privkey, nil
}
