package rabbitmq

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// AuditTrail implementa gateway.AuditTrail publicando eventos na fila; o
// worker os persiste no Mongo. Nenhum erro sobe daqui: auditoria jamais
// derruba a operação de negócio, e perder eventos durante uma queda do
// broker é o tradeoff aceito.
type AuditTrail struct {
	publisher gateway.EventPublisher
}

// NewAuditTrail aceita publisher nil (broker fora do ar na subida); nesse
// caso os eventos vão só para o log operacional.
func NewAuditTrail(publisher gateway.EventPublisher) *AuditTrail {
	return &AuditTrail{publisher: publisher}
}

func (a *AuditTrail) LogSuccess(ctx context.Context, action domain.AuditAction, entry domain.AuditEntry) {
	entry.Action = action
	entry.Status = domain.AuditSuccess
	a.log(ctx, entry)
}

func (a *AuditTrail) LogFailure(ctx context.Context, action domain.AuditAction, errorMessage string, entry domain.AuditEntry) {
	entry.Action = action
	entry.Status = domain.AuditFailure
	entry.ErrorMessage = errorMessage
	a.log(ctx, entry)
}

func (a *AuditTrail) LogPending(ctx context.Context, action domain.AuditAction, entry domain.AuditEntry) {
	entry.Action = action
	entry.Status = domain.AuditPending
	a.log(ctx, entry)
}

func (a *AuditTrail) log(ctx context.Context, entry domain.AuditEntry) {
	entry.CreatedAt = time.Now()

	log.Info().
		Str("action", string(entry.Action)).
		Str("status", string(entry.Status)).
		Str("wallet", entry.WalletAddress).
		Str("tx_hash", entry.TransactionHash).
		Msg("Evento de auditoria")

	if a.publisher == nil {
		log.Warn().Msg("Auditoria sem broker: evento registrado apenas no log")
		return
	}

	routingKey := "audit." + string(entry.Action)
	if err := a.publisher.Publish(ctx, EventsExchange, routingKey, entry); err != nil {
		// Contido de propósito. O log operacional é o destino de último caso.
		log.Error().Err(err).Str("action", string(entry.Action)).Msg("Falha ao publicar evento de auditoria")
	}
}
