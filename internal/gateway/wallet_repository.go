package gateway

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
)

// WalletRepository define o contrato para persistência de carteiras.
// O UseCase só interage com isso, sem saber se é Postgres ou outro banco.
type WalletRepository interface {
	// Create persiste a carteira e preenche ID e timestamps gerados.
	Create(ctx context.Context, wallet *domain.Wallet) error

	// GetByAddress busca pelo endereço checksummed.
	// Retorna domain.ErrWalletNotFound quando não existe.
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)

	// GetByAddressAndOwner restringe a busca ao dono informado.
	GetByAddressAndOwner(ctx context.Context, address string, ownerID int64) (*domain.Wallet, error)

	// WithTx retorna uma cópia do repositório ligada à transação informada,
	// para participar do escopo atômico aberto pelo TransactionManager.
	WithTx(tx TransactionObject) WalletRepository
}
