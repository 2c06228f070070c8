package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// WalletRepository implementa gateway.WalletRepository usando pgx/v5.
type WalletRepository struct {
	db querier
}

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{db: pool}
}

const walletColumns = `id, address, private_key_encrypted, network, owner_id, created_at, updated_at`

func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	// A constraint UNIQUE (address, network, owner_id) mora no banco.
	row := r.db.QueryRow(ctx, `
		INSERT INTO wallets (address, private_key_encrypted, network, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		wallet.Address, wallet.PrivateKeyEncrypted, string(wallet.Network), wallet.OwnerID,
	)

	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&wallet.ID, &createdAt, &updatedAt); err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	wallet.CreatedAt = createdAt.Time
	wallet.UpdatedAt = updatedAt.Time
	return nil
}

func (r *WalletRepository) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE address = $1 ORDER BY id LIMIT 1`,
		address,
	)
	return scanWallet(row)
}

func (r *WalletRepository) GetByAddressAndOwner(ctx context.Context, address string, ownerID int64) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE address = $1 AND owner_id = $2 ORDER BY id LIMIT 1`,
		address, ownerID,
	)
	return scanWallet(row)
}

// WithTx retorna uma cópia do repositório usando uma transação específica.
func (r *WalletRepository) WithTx(tx gateway.TransactionObject) gateway.WalletRepository {
	pgTx, ok := tx.(pgx.Tx)
	if !ok {
		return r
	}
	return &WalletRepository{db: pgTx}
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w                    domain.Wallet
		network              string
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&w.ID, &w.Address, &w.PrivateKeyEncrypted, &network, &w.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	w.Network = domain.Network(network)
	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time
	return &w, nil
}
