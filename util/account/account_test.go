package account_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/ajer/util/account"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func TestPrivateKeyAccount(t *testing.T) {
	acc, err := account.NewPrivateKeyAccount("0x" + testKey)
	require.NoError(t, err)

	_, key, err := account.PrivateKeyFromHex(testKey)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), acc.Address())
	assert.Equal(t, acc.Address().Hex(), acc.AddressHex())
}

func TestSignTxRecoversSender(t *testing.T) {
	acc, err := account.NewPrivateKeyAccount(testKey)
	require.NoError(t, err)

	to := common.HexToAddress("0xa801FD013141ECF63E08003aC669a495e2269d1A")
	chainID := big.NewInt(80001)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    3,
		GasPrice: big.NewInt(1),
		Gas:      21000,
		To:       &to,
		Value:    big.NewInt(10),
	})

	signed, err := acc.SignTx(tx, chainID)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, acc.Address(), sender)
}

func TestKeystoreAccount(t *testing.T) {
	_, priv, err := account.PrivateKeyFromHex(testKey)
	require.NoError(t, err)

	key := &keystore.Key{
		Id:         uuid.New(),
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}
	blob, err := keystore.EncryptKey(key, "secret", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, blob, 0600))

	acc, err := account.NewKeystoreAccount(path, "secret")
	require.NoError(t, err)
	assert.Equal(t, key.Address, acc.Address())

	_, err = account.NewKeystoreAccount(path, "wrong")
	assert.Error(t, err)
}

func TestInvalidPrivateKey(t *testing.T) {
	_, err := account.NewPrivateKeyAccount("0xzz")
	assert.Error(t, err)
}
