package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

type GetTransactionUseCase struct {
	transactionRepository gateway.TransactionRepository
}

func NewGetTransaction(transactionRepo gateway.TransactionRepository) *GetTransactionUseCase {
	return &GetTransactionUseCase{transactionRepository: transactionRepo}
}

// Execute busca o registro local pelo hash. Ausência devolve nil, não erro.
func (u *GetTransactionUseCase) Execute(ctx context.Context, hash string) (*domain.Transaction, error) {
	tx, err := u.transactionRepository.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}
