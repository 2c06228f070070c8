package ethereum

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// Signer assina transferências offline (EIP-155). Não abre conexão nenhuma:
// recebe tudo que precisa nos parâmetros e devolve os bytes prontos para
// broadcast mais o hash determinístico da transação assinada.
type Signer struct{}

func NewSigner() *Signer {
	return &Signer{}
}

func (s *Signer) SignTransfer(privateKeyHex []byte, params gateway.TransferParams) ([]byte, string, error) {
	keyHex := strings.TrimPrefix(string(privateKeyHex), "0x")
	privateKey, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, "", fmt.Errorf("invalid private key: %w", err)
	}

	tx := types.NewTransaction(
		params.Nonce,
		common.HexToAddress(params.To),
		params.AmountWei,
		params.GasLimit,
		params.GasPrice,
		nil, // sem payload: transferência simples
	)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(params.ChainID), privateKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	return raw, signedTx.Hash().Hex(), nil
}
