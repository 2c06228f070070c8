package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

const defaultHistoryLimit = 10

// TransactionHistoryUseCase mescla o registro local (autoritativo para o que
// nós mesmos enviamos) com o histórico visto pelo provedor externo. Lookup
// histórico é best-effort por definição: pode ser incompleto, nunca é erro.
type TransactionHistoryUseCase struct {
	walletRepository      gateway.WalletRepository
	transactionRepository gateway.TransactionRepository
	ledgers               gateway.LedgerRegistry
}

func NewTransactionHistory(
	walletRepo gateway.WalletRepository,
	transactionRepo gateway.TransactionRepository,
	ledgers gateway.LedgerRegistry,
) *TransactionHistoryUseCase {
	return &TransactionHistoryUseCase{
		walletRepository:      walletRepo,
		transactionRepository: transactionRepo,
		ledgers:               ledgers,
	}
}

// Execute retorna até limit transações do endereço, sem hash duplicado,
// ordenadas da mais recente para a mais antiga.
func (u *TransactionHistoryUseCase) Execute(ctx context.Context, address string, network domain.Network, limit int) ([]*domain.Transaction, error) {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	ledger, err := u.ledgers.Ledger(network)
	if err != nil {
		return nil, err
	}

	var (
		local    []*domain.Transaction
		walletID int64
	)
	wallet, err := u.walletRepository.GetByAddress(ctx, normalized)
	switch {
	case err == nil:
		walletID = wallet.ID
		local, err = u.transactionRepository.ListByWallet(ctx, wallet.ID, network, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list local transactions: %w", err)
		}
	case errors.Is(err, domain.ErrWalletNotFound):
		// Endereço não custodiado por nós: só o provedor externo tem algo.
	default:
		return nil, fmt.Errorf("failed to look up wallet: %w", err)
	}

	merged := make([]*domain.Transaction, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, tx := range local {
		merged = append(merged, tx)
		seen[tx.Hash] = struct{}{}
	}

	for _, entry := range ledger.History(ctx, normalized, limit) {
		if _, ok := seen[entry.Hash]; ok {
			continue
		}
		seen[entry.Hash] = struct{}{}

		tx := &domain.Transaction{
			Hash:        entry.Hash,
			FromAddress: entry.From,
			ToAddress:   entry.To,
			AmountWei:   entry.AmountWei,
			Status:      entry.Status,
			Network:     network,
			BlockNumber: entry.BlockNumber,
			GasUsed:     entry.GasUsed,
			GasPrice:    entry.GasPrice,
			WalletID:    walletID,
		}
		if entry.Timestamp != nil {
			tx.CreatedAt = *entry.Timestamp
		}
		merged = append(merged, tx)
	}

	// Mais recente primeiro; entradas sem timestamp vão para o fim.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
