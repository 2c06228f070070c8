package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// claimLease é por quanto tempo um job "alugado" fica invisível para outros
// workers. Maior que qualquer rodada de polling razoável; se o worker morrer
// no meio, o job volta sozinho depois do lease.
const claimLease = 2 * time.Minute

type ReconcileJobRepository struct {
	db querier
}

func NewReconcileJobRepository(pool *pgxpool.Pool) *ReconcileJobRepository {
	return &ReconcileJobRepository{db: pool}
}

func (r *ReconcileJobRepository) Create(ctx context.Context, job *domain.ReconcileJob) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO reconcile_jobs (tx_hash, transaction_id, network, attempts, status, next_run_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		job.TxHash, job.TransactionID, string(job.Network), job.Attempts, string(job.Status), job.NextRunAt,
	)
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&createdAt, &updatedAt); err != nil {
		return fmt.Errorf("failed to create reconcile job: %w", err)
	}
	job.CreatedAt = createdAt.Time
	job.UpdatedAt = updatedAt.Time
	return nil
}

// ClaimDue usa FOR UPDATE SKIP LOCKED para que vários workers disputem a
// fila sem travar uns aos outros; o UPDATE empurra o next_run_at para
// frente como lease, então cada job sai em exatamente um worker.
func (r *ReconcileJobRepository) ClaimDue(ctx context.Context, limit int) ([]*domain.ReconcileJob, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE reconcile_jobs
		SET next_run_at = now() + $2::interval, updated_at = now()
		WHERE tx_hash IN (
			SELECT tx_hash FROM reconcile_jobs
			WHERE status = 'due' AND next_run_at <= now()
			ORDER BY next_run_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING tx_hash, transaction_id, network, attempts, status, next_run_at, created_at, updated_at`,
		limit, claimLease.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim reconcile jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.ReconcileJob
	for rows.Next() {
		var (
			j                               domain.ReconcileJob
			network, status                 string
			nextRunAt, createdAt, updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&j.TxHash, &j.TransactionID, &network, &j.Attempts, &status, &nextRunAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reconcile job: %w", err)
		}
		j.Network = domain.Network(network)
		j.Status = domain.ReconcileJobStatus(status)
		j.NextRunAt = nextRunAt.Time
		j.CreatedAt = createdAt.Time
		j.UpdatedAt = updatedAt.Time
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func (r *ReconcileJobRepository) Reschedule(ctx context.Context, txHash string, attempts int, nextRunAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE reconcile_jobs
		SET attempts = $2, next_run_at = $3, updated_at = now()
		WHERE tx_hash = $1 AND status = 'due'`,
		txHash, attempts, nextRunAt,
	)
	if err != nil {
		return fmt.Errorf("failed to reschedule reconcile job: %w", err)
	}
	return nil
}

func (r *ReconcileJobRepository) MarkDone(ctx context.Context, txHash string) error {
	return r.setStatus(ctx, txHash, domain.ReconcileDone)
}

func (r *ReconcileJobRepository) MarkExhausted(ctx context.Context, txHash string) error {
	return r.setStatus(ctx, txHash, domain.ReconcileExhausted)
}

func (r *ReconcileJobRepository) setStatus(ctx context.Context, txHash string, status domain.ReconcileJobStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE reconcile_jobs SET status = $2, updated_at = now() WHERE tx_hash = $1`,
		txHash, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to update reconcile job status: %w", err)
	}
	return nil
}

func (r *ReconcileJobRepository) WithTx(tx gateway.TransactionObject) gateway.ReconcileJobRepository {
	pgTx, ok := tx.(pgx.Tx)
	if !ok {
		return r
	}
	return &ReconcileJobRepository{db: pgTx}
}
