package domain

import "time"

type ReconcileJobStatus string

const (
	ReconcileDue       ReconcileJobStatus = "due"
	ReconcileDone      ReconcileJobStatus = "done"
	ReconcileExhausted ReconcileJobStatus = "exhausted"
)

// ReconcileJob é a versão durável do "fire and forget" de confirmação:
// uma linha por hash, criada no mesmo escopo atômico da Transaction,
// consumida pelo worker até obter um receipt ou estourar o orçamento
// de tentativas. Sobrevive a restart do processo.
type ReconcileJob struct {
	TxHash        string
	TransactionID string
	Network       Network
	Attempts      int
	Status        ReconcileJobStatus
	NextRunAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
