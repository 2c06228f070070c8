package gateway

import (
	"context"
	"math/big"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
)

type TransactionRepository interface {
	// Create insere a transação com status pending e preenche ID/timestamps.
	Create(ctx context.Context, tx *domain.Transaction) error

	// GetByHash retorna domain.ErrTransactionNotFound quando não existe.
	GetByHash(ctx context.Context, hash string) (*domain.Transaction, error)

	// ListByWallet retorna as transações da carteira na rede, mais recentes
	// primeiro, limitado a limit linhas.
	ListByWallet(ctx context.Context, walletID int64, network domain.Network, limit int) ([]*domain.Transaction, error)

	// UpdateOutcome fecha uma transação pendente. A cláusula de status no
	// repositório garante que pending -> confirmed/failed nunca reverte.
	UpdateOutcome(ctx context.Context, id string, status domain.TransactionStatus, blockNumber int64, gasUsed *big.Int) error

	// WithTx segue o mesmo padrão da Wallet para participar da transação atômica.
	WithTx(tx TransactionObject) TransactionRepository
}
