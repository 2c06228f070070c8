package gateway

import (
	"context"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
)

type ReconcileJobRepository interface {
	// Create agenda a reconciliação de um hash. Deve rodar dentro do mesmo
	// escopo atômico que criou a Transaction correspondente.
	Create(ctx context.Context, job *domain.ReconcileJob) error

	// ClaimDue pega até limit jobs vencidos e os "aluga" (empurra o
	// next_run_at para frente), de forma que vários workers concorrentes
	// nunca processem o mesmo hash ao mesmo tempo.
	ClaimDue(ctx context.Context, limit int) ([]*domain.ReconcileJob, error)

	// Reschedule devolve o job para a fila com o contador atualizado.
	Reschedule(ctx context.Context, txHash string, attempts int, nextRunAt time.Time) error

	// MarkDone encerra o job após um receipt definitivo.
	MarkDone(ctx context.Context, txHash string) error

	// MarkExhausted encerra o job sem receipt; a transação fica pending.
	MarkExhausted(ctx context.Context, txHash string) error

	WithTx(tx TransactionObject) ReconcileJobRepository
}
