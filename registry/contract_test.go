package registry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ajercommon "github.com/tranvictor/ajer/common"
	"github.com/tranvictor/ajer/provider"
	"github.com/tranvictor/ajer/provider/providertest"
	"github.com/tranvictor/ajer/registry"
)

const sender = "0x71c7656ec7ab88b098defb751b7401b5f6d8976f"

type txParams struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *hexutil.Big   `json:"value"`
	Data  hexutil.Bytes  `json:"data"`
}

func decodeParams(t *testing.T, params []interface{}) txParams {
	t.Helper()
	raw, err := json.Marshal(params[0])
	require.NoError(t, err)
	var p txParams
	require.NoError(t, json.Unmarshal(raw, &p))
	return p
}

func registryABI(t *testing.T) abi.ABI {
	t.Helper()
	a, err := abi.JSON(strings.NewReader(registry.REGISTRY_ABI))
	require.NoError(t, err)
	return a
}

// fakeChain answers eth_call from a fixed name table.
func fakeChain(t *testing.T, owners map[string]common.Address, records map[string]string, names []string) *providertest.Fake {
	a := registryABI(t)
	return providertest.New().Handle(provider.MethodCall, func(params []interface{}) (interface{}, error) {
		p := decodeParams(t, params)
		method, err := a.MethodById(p.Data[:4])
		if err != nil {
			return nil, err
		}
		args, err := method.Inputs.Unpack(p.Data[4:])
		if err != nil {
			return nil, err
		}
		var out []byte
		switch method.Name {
		case "getAllNames":
			out, err = method.Outputs.Pack(names)
		case "records":
			out, err = method.Outputs.Pack(records[args[0].(string)])
		case "domains":
			out, err = method.Outputs.Pack(owners[args[0].(string)])
		}
		return hexutil.Bytes(out), err
	})
}

func TestContractReads(t *testing.T) {
	owner := common.HexToAddress(sender)
	fake := fakeChain(t,
		map[string]common.Address{"ann": owner},
		map[string]string{"ann": "hello"},
		[]string{"ann", "bob"},
	)
	c, err := registry.NewContract(fake, registry.DefaultAddress, nil)
	require.NoError(t, err)
	ctx := context.Background()

	names, err := c.GetAllNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "bob"}, names)

	record, err := c.Records(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, "hello", record)

	got, err := c.Domains(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	unowned, err := c.Domains(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, unowned)

	call := decodeParams(t, fake.Calls(provider.MethodCall)[0].Params)
	assert.Equal(t, common.HexToAddress(registry.DefaultAddress), call.To)
}

func TestContractReadError(t *testing.T) {
	fake := providertest.New().Fail(provider.MethodCall, provider.NewError(provider.CodeInternal, "node down"))
	c, err := registry.NewContract(fake, registry.DefaultAddress, nil)
	require.NoError(t, err)
	_, err = c.GetAllNames(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getAllNames")
}

func TestContractRegisterAndWait(t *testing.T) {
	a := registryABI(t)
	hash := common.HexToHash("0xabc1")
	var polls int32
	fake := providertest.New().
		Respond(provider.MethodSendTransaction, hash).
		Handle(provider.MethodTransactionReceipt, func([]interface{}) (interface{}, error) {
			if atomic.AddInt32(&polls, 1) < 3 {
				return nil, nil
			}
			return &ajercommon.Receipt{
				TxHash:      hash,
				Status:      hexutil.Uint64(ajercommon.ReceiptStatusSuccessful),
				BlockNumber: (*hexutil.Big)(big.NewInt(10)),
			}, nil
		})
	c, err := registry.NewContract(fake, registry.DefaultAddress, func() string { return sender },
		registry.WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	value, _ := new(big.Int).SetString("500000000000000000", 10)
	tx, err := c.Register(context.Background(), "ann", value)
	require.NoError(t, err)
	assert.Equal(t, hash, tx.Hash())

	sent := decodeParams(t, fake.Calls(provider.MethodSendTransaction)[0].Params)
	assert.Equal(t, common.HexToAddress(sender), sent.From)
	assert.Equal(t, 0, value.Cmp(sent.Value.ToInt()))
	expected, err := a.Pack("register", "ann")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(expected, sent.Data))

	receipt, err := tx.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(3))
}

func TestContractSetRecordFailedReceipt(t *testing.T) {
	fake := providertest.New().
		Respond(provider.MethodSendTransaction, common.HexToHash("0x01")).
		Respond(provider.MethodTransactionReceipt, &ajercommon.Receipt{Status: 0})
	c, err := registry.NewContract(fake, registry.DefaultAddress, func() string { return sender },
		registry.WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	tx, err := c.SetRecord(context.Background(), "ann", "text")
	require.NoError(t, err)
	sent := decodeParams(t, fake.Calls(provider.MethodSendTransaction)[0].Params)
	assert.Nil(t, sent.Value)

	receipt, err := tx.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, receipt.Succeeded())
}

func TestContractWriteWithoutAccount(t *testing.T) {
	fake := providertest.New()
	c, err := registry.NewContract(fake, registry.DefaultAddress, func() string { return "" })
	require.NoError(t, err)
	_, err = c.SetRecord(context.Background(), "ann", "text")
	assert.ErrorIs(t, err, registry.ErrNoAccount)
	assert.Equal(t, 0, fake.Count(provider.MethodSendTransaction))
}

func TestContractWriteRejected(t *testing.T) {
	fake := providertest.New().Fail(provider.MethodSendTransaction, provider.NewError(provider.CodeUserRejected, "denied"))
	c, err := registry.NewContract(fake, registry.DefaultAddress, func() string { return sender })
	require.NoError(t, err)
	_, err = c.Register(context.Background(), "ann", big.NewInt(1))
	require.Error(t, err)
	assert.True(t, provider.IsUserRejected(err))
}

func TestNewContractInvalidAddress(t *testing.T) {
	_, err := registry.NewContract(providertest.New(), "not-an-address", nil)
	assert.Error(t, err)
}
