package gateway

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
)

// AuditTrail registra eventos de auditoria em best-effort. Nenhum método
// retorna erro de propósito: falha de auditoria vai para o log operacional
// e jamais derruba a operação de negócio que a disparou.
type AuditTrail interface {
	LogSuccess(ctx context.Context, action domain.AuditAction, entry domain.AuditEntry)
	LogFailure(ctx context.Context, action domain.AuditAction, errorMessage string, entry domain.AuditEntry)
	LogPending(ctx context.Context, action domain.AuditAction, entry domain.AuditEntry)
}
