package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

type TransactionRepository struct {
	db querier
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: pool}
}

// Valores em wei são numeric(78,0) no banco; trafegamos como texto e
// convertemos para big.Int aqui, nunca float.
const transactionColumns = `id, hash, from_address, to_address, amount::text, status, network,
	block_number, gas_used::text, gas_price::text, wallet_id, created_at, updated_at`

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO transactions (hash, from_address, to_address, amount, status, network, gas_price, wallet_id)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7::numeric, $8)
		RETURNING id, created_at, updated_at`,
		tx.Hash, tx.FromAddress, tx.ToAddress, tx.AmountWei.String(),
		string(tx.Status), string(tx.Network), numericText(tx.GasPrice), tx.WalletID,
	)

	var (
		id                   pgtype.UUID
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	tx.ID = uuidString(id)
	tx.CreatedAt = createdAt.Time
	tx.UpdatedAt = updatedAt.Time
	return nil
}

func (r *TransactionRepository) GetByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE hash = $1`,
		hash,
	)
	return scanTransaction(row)
}

func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID int64, network domain.Network, limit int) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE wallet_id = $1 AND network = $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		walletID, string(network), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// UpdateOutcome só toca linhas pendentes: a transição pending -> confirmed/failed
// nunca reverte nem re-executa, mesmo que dois workers disputem o mesmo hash.
func (r *TransactionRepository) UpdateOutcome(ctx context.Context, id string, status domain.TransactionStatus, blockNumber int64, gasUsed *big.Int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE transactions
		SET status = $2, block_number = $3, gas_used = $4::numeric, updated_at = now()
		WHERE id = $1 AND status = 'pending'`,
		id, string(status), blockNumber, numericText(gasUsed),
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) WithTx(tx gateway.TransactionObject) gateway.TransactionRepository {
	pgTx, ok := tx.(pgx.Tx)
	if !ok {
		return r
	}
	return &TransactionRepository{db: pgTx}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                    domain.Transaction
		id                   pgtype.UUID
		amount               string
		status, network      string
		blockNumber          pgtype.Int8
		gasUsed, gasPrice    *string
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &t.Hash, &t.FromAddress, &t.ToAddress, &amount, &status, &network,
		&blockNumber, &gasUsed, &gasPrice, &t.WalletID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	t.ID = uuidString(id)
	t.AmountWei = mustBigInt(amount)
	t.Status = domain.TransactionStatus(status)
	t.Network = domain.Network(network)
	if blockNumber.Valid {
		t.BlockNumber = &blockNumber.Int64
	}
	if gasUsed != nil {
		t.GasUsed = mustBigInt(*gasUsed)
	}
	if gasPrice != nil {
		t.GasPrice = mustBigInt(*gasPrice)
	}
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	return &t, nil
}

// Helpers de conversão numeric <-> big.Int.

func numericText(v *big.Int) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func mustBigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		// numeric(78,0) garante dígitos decimais puros; se chegou aqui o
		// schema foi alterado por fora.
		return big.NewInt(0)
	}
	return v
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	b := id.Bytes
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
