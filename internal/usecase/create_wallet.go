package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/encryption"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

type CreateWalletInput struct {
	OwnerID int64
	Network domain.Network
}

// CreateWalletUseCase gera um par de chaves novo, cifra a chave privada em
// envelope e persiste a carteira. A chave em claro existe só dentro do
// Execute e é zerada antes de retornar.
type CreateWalletUseCase struct {
	walletRepository gateway.WalletRepository
	keyGenerator     gateway.KeyGenerator
	keyCipher        gateway.KeyCipher
	auditTrail       gateway.AuditTrail
	enforceTestnet   bool
}

func NewCreateWallet(
	walletRepo gateway.WalletRepository,
	keyGen gateway.KeyGenerator,
	keyCipher gateway.KeyCipher,
	audit gateway.AuditTrail,
	enforceTestnet bool,
) *CreateWalletUseCase {
	return &CreateWalletUseCase{
		walletRepository: walletRepo,
		keyGenerator:     keyGen,
		keyCipher:        keyCipher,
		auditTrail:       audit,
		enforceTestnet:   enforceTestnet,
	}
}

func (u *CreateWalletUseCase) Execute(ctx context.Context, input CreateWalletInput) (*domain.Wallet, error) {
	// Política de testnet: barramos ANTES de gerar qualquer material de chave.
	if u.enforceTestnet && input.Network == domain.NetworkMainnet {
		u.auditFailure(ctx, input, "", domain.ErrMainnetDisabled.Error())
		return nil, domain.ErrMainnetDisabled
	}

	privateKey, address, err := u.keyGenerator.Generate()
	if err != nil {
		u.auditFailure(ctx, input, "", err.Error())
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	defer encryption.Zero(privateKey)

	envelope, err := u.keyCipher.Encrypt(privateKey)
	if err != nil {
		u.auditFailure(ctx, input, address, err.Error())
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	wallet := &domain.Wallet{
		Address:             address,
		PrivateKeyEncrypted: envelope,
		Network:             input.Network,
		OwnerID:             input.OwnerID,
	}
	if err := u.walletRepository.Create(ctx, wallet); err != nil {
		u.auditFailure(ctx, input, address, err.Error())
		return nil, fmt.Errorf("failed to save wallet: %w", err)
	}

	log.Info().
		Str("address", address).
		Int64("owner_id", input.OwnerID).
		Str("network", string(input.Network)).
		Msg("Carteira criada")

	u.auditTrail.LogSuccess(ctx, domain.AuditWalletCreate, domain.AuditEntry{
		OwnerID:       &input.OwnerID,
		WalletAddress: address,
		Metadata:      map[string]any{"network": input.Network},
	})

	return wallet, nil
}

func (u *CreateWalletUseCase) auditFailure(ctx context.Context, input CreateWalletInput, address, errMsg string) {
	u.auditTrail.LogFailure(ctx, domain.AuditWalletCreate, errMsg, domain.AuditEntry{
		OwnerID:       &input.OwnerID,
		WalletAddress: address,
		Metadata:      map[string]any{"network": input.Network},
	})
}
