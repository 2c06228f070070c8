package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

const (
	// 30 tentativas a cada 10s ≈ 5 minutos de janela de confirmação.
	defaultMaxAttempts  = 30
	defaultPollInterval = 10 * time.Second
)

// ReconcileUseCase fecha o ciclo entre "submitted" e "settled": consulta o
// receipt de cada hash pendente e reflete o desfecho no registro local.
// Cada job é dono de exatamente uma linha (seu hash), então não há conflito
// de escrita entre execuções concorrentes.
type ReconcileUseCase struct {
	transactionRepository gateway.TransactionRepository
	jobRepository         gateway.ReconcileJobRepository
	ledgers               gateway.LedgerRegistry
	auditTrail            gateway.AuditTrail
	maxAttempts           int
	pollInterval          time.Duration
}

func NewReconcile(
	transactionRepo gateway.TransactionRepository,
	jobRepo gateway.ReconcileJobRepository,
	ledgers gateway.LedgerRegistry,
	audit gateway.AuditTrail,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		transactionRepository: transactionRepo,
		jobRepository:         jobRepo,
		ledgers:               ledgers,
		auditTrail:            audit,
		maxAttempts:           defaultMaxAttempts,
		pollInterval:          defaultPollInterval,
	}
}

// ClaimDue aluga um lote de jobs vencidos para o worker pool.
func (u *ReconcileUseCase) ClaimDue(ctx context.Context, limit int) ([]*domain.ReconcileJob, error) {
	return u.jobRepository.ClaimDue(ctx, limit)
}

// Process executa uma rodada de polling para um job. Erros transitórios são
// logados e reagendados, nunca propagados: a supervisão do loop fica no
// worker, não em quem enviou a transação.
func (u *ReconcileUseCase) Process(ctx context.Context, job *domain.ReconcileJob) {
	ledger, err := u.ledgers.Ledger(job.Network)
	if err != nil {
		log.Error().Err(err).Str("hash", job.TxHash).Msg("Rede do job não configurada")
		u.retry(ctx, job)
		return
	}

	receipt, err := ledger.Receipt(ctx, job.TxHash)
	if err != nil {
		log.Warn().Err(err).
			Str("hash", job.TxHash).
			Int("attempt", job.Attempts+1).
			Msg("Falha ao consultar receipt, vamos tentar de novo")
		u.retry(ctx, job)
		return
	}

	// nil = a rede ainda não conhece o hash. Não é erro.
	if receipt == nil {
		u.retry(ctx, job)
		return
	}

	status := domain.TransactionFailed
	if receipt.Success {
		status = domain.TransactionConfirmed
	}

	if err := u.transactionRepository.UpdateOutcome(ctx, job.TransactionID, status, receipt.BlockNumber, receipt.GasUsed); err != nil {
		log.Error().Err(err).Str("hash", job.TxHash).Msg("Falha ao atualizar desfecho da transação")
		u.retry(ctx, job)
		return
	}

	if status == domain.TransactionConfirmed {
		u.auditTrail.LogSuccess(ctx, domain.AuditTransactionConfirm, domain.AuditEntry{
			TransactionHash: job.TxHash,
			Metadata: map[string]any{
				"block_number": receipt.BlockNumber,
				"gas_used":     receipt.GasUsed.String(),
			},
		})
	} else {
		u.auditTrail.LogFailure(ctx, domain.AuditTransactionFail, "transaction failed on chain", domain.AuditEntry{
			TransactionHash: job.TxHash,
			Metadata:        map[string]any{"block_number": receipt.BlockNumber},
		})
	}

	if err := u.jobRepository.MarkDone(ctx, job.TxHash); err != nil {
		log.Error().Err(err).Str("hash", job.TxHash).Msg("Falha ao encerrar job de reconciliação")
	}

	log.Info().
		Str("hash", job.TxHash).
		Str("status", string(status)).
		Int64("block", receipt.BlockNumber).
		Msg("Transação reconciliada")
}

// retry reagenda ou, estourado o orçamento, encerra o job em silêncio.
// A transação fica pending para sempre, por decisão de projeto.
func (u *ReconcileUseCase) retry(ctx context.Context, job *domain.ReconcileJob) {
	job.Attempts++
	if job.Attempts >= u.maxAttempts {
		if err := u.jobRepository.MarkExhausted(ctx, job.TxHash); err != nil {
			log.Error().Err(err).Str("hash", job.TxHash).Msg("Falha ao marcar job como esgotado")
			return
		}
		log.Warn().
			Str("hash", job.TxHash).
			Int("attempts", job.Attempts).
			Msg("Orçamento de reconciliação esgotado, transação segue pendente")
		return
	}
	if err := u.jobRepository.Reschedule(ctx, job.TxHash, job.Attempts, time.Now().Add(u.pollInterval)); err != nil {
		log.Error().Err(err).Str("hash", job.TxHash).Msg("Falha ao reagendar job")
	}
}
