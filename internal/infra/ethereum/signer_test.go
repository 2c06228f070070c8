package ethereum

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// Chave de teste conhecida (NUNCA usar fora de teste).
const testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testParams() gateway.TransferParams {
	return gateway.TransferParams{
		To:        "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		AmountWei: big.NewInt(1_000_000_000_000_000_000),
		Nonce:     7,
		GasLimit:  23100,
		GasPrice:  big.NewInt(1_000_000_000),
		ChainID:   big.NewInt(11155111),
	}
}

func TestSignTransfer_ProducesValidSignedTx(t *testing.T) {
	signer := NewSigner()
	params := testParams()

	raw, hash, err := signer.SignTransfer([]byte(testPrivateKey), params)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Len(t, hash, 66) // 0x + 32 bytes em hex

	// Os bytes decodificam de volta para a transferência pedida.
	var decoded types.Transaction
	require.NoError(t, decoded.UnmarshalBinary(raw))
	assert.Equal(t, params.Nonce, decoded.Nonce())
	assert.Equal(t, params.To, decoded.To().Hex())
	assert.Equal(t, params.AmountWei.String(), decoded.Value().String())
	assert.Equal(t, params.GasLimit, decoded.Gas())
	assert.Equal(t, params.ChainID.String(), decoded.ChainId().String())
	assert.Equal(t, hash, decoded.Hash().Hex())

	// Assinatura EIP-155 recupera o endereço do signatário.
	key, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)
	from, err := types.Sender(types.NewEIP155Signer(params.ChainID), &decoded)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), from)
}

func TestSignTransfer_AcceptsHexPrefix(t *testing.T) {
	signer := NewSigner()

	_, hashPlain, err := signer.SignTransfer([]byte(testPrivateKey), testParams())
	require.NoError(t, err)

	_, hashPrefixed, err := signer.SignTransfer([]byte("0x"+testPrivateKey), testParams())
	require.NoError(t, err)
	assert.Equal(t, hashPlain, hashPrefixed)
}

func TestSignTransfer_RejectsGarbageKey(t *testing.T) {
	signer := NewSigner()

	_, _, err := signer.SignTransfer([]byte("not-a-key"), testParams())
	assert.Error(t, err)
}

func TestKeyGenerator(t *testing.T) {
	gen := NewKeyGenerator()

	keyHex, address, err := gen.Generate()
	require.NoError(t, err)

	assert.Len(t, keyHex, 64) // 32 bytes em hex
	assert.Len(t, address, 42)

	// O endereço derivado bate com a chave gerada.
	key, err := crypto.HexToECDSA(string(keyHex))
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), address)

	// Duas chamadas nunca repetem material.
	otherKey, otherAddr, err := gen.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, string(keyHex), string(otherKey))
	assert.NotEqual(t, address, otherAddr)
}
