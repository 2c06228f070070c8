package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

type GetWalletUseCase struct {
	walletRepository gateway.WalletRepository
	ledgers          gateway.LedgerRegistry
}

func NewGetWallet(walletRepo gateway.WalletRepository, ledgers gateway.LedgerRegistry) *GetWalletUseCase {
	return &GetWalletUseCase{
		walletRepository: walletRepo,
		ledgers:          ledgers,
	}
}

// Execute busca a carteira pelo endereço, opcionalmente restrita ao dono.
// Endereço malformado é erro; carteira inexistente NÃO é: devolvemos nil.
func (u *GetWalletUseCase) Execute(ctx context.Context, address string, ownerID *int64) (*domain.Wallet, error) {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	var wallet *domain.Wallet
	if ownerID != nil {
		wallet, err = u.walletRepository.GetByAddressAndOwner(ctx, normalized, *ownerID)
	} else {
		wallet, err = u.walletRepository.GetByAddress(ctx, normalized)
	}
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up wallet: %w", err)
	}
	return wallet, nil
}

// GetBalance lê o saldo atual direto da rede, em wei.
func (u *GetWalletUseCase) GetBalance(ctx context.Context, address string, network domain.Network) (*big.Int, error) {
	normalized, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	ledger, err := u.ledgers.Ledger(network)
	if err != nil {
		return nil, err
	}
	balance, err := ledger.BalanceAt(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}
