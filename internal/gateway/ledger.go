package gateway

import (
	"context"
	"math/big"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
)

// Receipt é o desfecho confirmado de um broadcast anterior.
type Receipt struct {
	Success           bool
	BlockNumber       int64
	GasUsed           *big.Int
	EffectiveGasPrice *big.Int
}

// HistoryEntry é uma transação vista pelo provedor externo de histórico.
// O vocabulário de status aqui é o do provedor; o usecase mapeia para o enum local.
type HistoryEntry struct {
	Hash        string
	From        string
	To          string
	AmountWei   *big.Int
	Status      domain.TransactionStatus
	BlockNumber *int64
	GasUsed     *big.Int
	GasPrice    *big.Int
	Timestamp   *time.Time
}

// Ledger abstrai o nó da rede (e um indexador de histórico opcional).
// Todas as chamadas são bloqueantes e I/O-bound; a implementação não guarda
// estado mutável além das conexões, então chamadas concorrentes são livres.
type Ledger interface {
	ChainID() *big.Int

	BalanceAt(ctx context.Context, address string) (*big.Int, error)
	NonceAt(ctx context.Context, address string) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)

	// EstimateGas é consultivo: qualquer falha de estimativa devolve o
	// default fixo de transferência em vez de erro. Estimar gás nunca pode
	// bloquear uma tentativa de envio.
	EstimateGas(ctx context.Context, from, to string, amountWei *big.Int) uint64

	// Broadcast envia os bytes assinados e retorna o hash atribuído pela
	// rede. Erro de transporte ou rejeição do nó vira domain.ErrBroadcast.
	Broadcast(ctx context.Context, rawTx []byte) (string, error)

	// Receipt retorna (nil, nil) quando a rede ainda não conhece o hash;
	// isso não é um erro.
	Receipt(ctx context.Context, hash string) (*Receipt, error)

	// History consulta o indexador primário quando configurado, com
	// fallback silencioso para a consulta nativa do nó. Nunca devolve erro
	// ao chamador: o pior caso é uma lista vazia.
	History(ctx context.Context, address string, limit int) []HistoryEntry
}

// LedgerRegistry resolve o Ledger da rede pedida. As instâncias são
// singletons construídos uma vez no bootstrap.
type LedgerRegistry interface {
	Ledger(network domain.Network) (Ledger, error)
}

// TransferParams é o esqueleto da transferência a ser assinada offline.
type TransferParams struct {
	To        string
	AmountWei *big.Int
	Nonce     uint64
	GasLimit  uint64
	GasPrice  *big.Int
	ChainID   *big.Int
}

// Signer assina a transferência offline com a chave decifrada.
// Não toca na rede: o escopo do material de chave termina aqui.
type Signer interface {
	SignTransfer(privateKeyHex []byte, params TransferParams) (rawTx []byte, hash string, err error)
}

// KeyGenerator produz um par de chaves novo e o endereço checksummed derivado.
type KeyGenerator interface {
	Generate() (privateKeyHex []byte, address string, err error)
}

// KeyCipher é a porta para o serviço de envelope (internal/encryption).
type KeyCipher interface {
	Encrypt(secret []byte) (string, error)
	Decrypt(envelope string) ([]byte, error)
}
