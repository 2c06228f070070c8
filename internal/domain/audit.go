package domain

import "time"

type AuditAction string

const (
	AuditWalletCreate       AuditAction = "wallet_create"
	AuditWalletAccess       AuditAction = "wallet_access"
	AuditBalanceCheck       AuditAction = "balance_check"
	AuditTransactionSend    AuditAction = "transaction_send"
	AuditTransactionConfirm AuditAction = "transaction_confirm"
	AuditTransactionFail    AuditAction = "transaction_fail"
)

type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditFailure AuditStatus = "failure"
	AuditPending AuditStatus = "pending"
)

// AuditEntry é o evento de auditoria que trafega pela fila até o Mongo.
// Best-effort: perder um destes durante uma indisponibilidade de storage
// é aceitável, falhar a operação de negócio por causa dele não é.
type AuditEntry struct {
	Action          AuditAction    `json:"action"`
	Status          AuditStatus    `json:"status"`
	OwnerID         *int64         `json:"owner_id,omitempty"`
	WalletAddress   string         `json:"wallet_address,omitempty"`
	TransactionHash string         `json:"transaction_hash,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
