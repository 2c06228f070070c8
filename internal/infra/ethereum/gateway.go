package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// Gas fixo de uma transferência simples de ETH; também é o fallback quando
// a estimativa do nó falha.
const transferGasLimit = 21000

// Gateway implementa gateway.Ledger sobre um nó JSON-RPC, com um cliente
// Etherscan opcional para histórico indexado. Sem estado mutável além das
// conexões: seguro para uso concorrente.
type Gateway struct {
	client    *ethclient.Client
	chainID   *big.Int
	network   domain.Network
	etherscan *etherscanClient // nil quando não há API key configurada
}

func NewGateway(ctx context.Context, rpcURL string, network domain.Network, etherscanURL, etherscanAPIKey string) (*Gateway, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to node: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	var etherscan *etherscanClient
	if etherscanAPIKey != "" {
		etherscan = newEtherscanClient(etherscanURL, etherscanAPIKey)
	}

	log.Info().
		Str("network", string(network)).
		Str("chain_id", chainID.String()).
		Bool("indexed_history", etherscan != nil).
		Msg("Gateway da rede inicializado")

	return &Gateway{
		client:    client,
		chainID:   chainID,
		network:   network,
		etherscan: etherscan,
	}, nil
}

func (g *Gateway) ChainID() *big.Int {
	return new(big.Int).Set(g.chainID)
}

func (g *Gateway) Close() {
	g.client.Close()
}

func (g *Gateway) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	balance, err := g.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (g *Gateway) NonceAt(ctx context.Context, address string) (uint64, error) {
	// PendingNonceAt inclui transações ainda no mempool, evitando reuso de
	// nonce quando envios se sucedem rápido.
	nonce, err := g.client.PendingNonceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return 0, fmt.Errorf("failed to get nonce: %w", err)
	}
	return nonce, nil
}

func (g *Gateway) GasPrice(ctx context.Context) (*big.Int, error) {
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return gasPrice, nil
}

// EstimateGas nunca falha: estimativa é consultiva e não pode bloquear um
// envio. Qualquer erro cai no gas fixo de transferência.
func (g *Gateway) EstimateGas(ctx context.Context, from, to string, amountWei *big.Int) uint64 {
	toAddr := common.HexToAddress(to)
	gas, err := g.client.EstimateGas(ctx, goethereum.CallMsg{
		From:  common.HexToAddress(from),
		To:    &toAddr,
		Value: amountWei,
	})
	if err != nil {
		log.Warn().Err(err).Str("to", to).Msg("Estimativa de gás falhou, usando default")
		return transferGasLimit
	}
	return gas
}

func (g *Gateway) Broadcast(ctx context.Context, rawTx []byte) (string, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(rawTx); err != nil {
		return "", fmt.Errorf("%w: invalid signed payload: %v", domain.ErrBroadcast, err)
	}
	if err := g.client.SendTransaction(ctx, tx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBroadcast, err)
	}
	return tx.Hash().Hex(), nil
}

// Receipt devolve (nil, nil) enquanto a rede não conhece o hash.
func (g *Gateway) Receipt(ctx context.Context, hash string) (*gateway.Receipt, error) {
	receipt, err := g.client.TransactionReceipt(ctx, common.HexToHash(hash))
	if err != nil {
		if errors.Is(err, goethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return &gateway.Receipt{
		Success:           receipt.Status == types.ReceiptStatusSuccessful,
		BlockNumber:       receipt.BlockNumber.Int64(),
		GasUsed:           new(big.Int).SetUint64(receipt.GasUsed),
		EffectiveGasPrice: receipt.EffectiveGasPrice,
	}, nil
}
