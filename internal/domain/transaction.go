package domain

import (
	"math/big"
	"time"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction é o registro local de uma transação enviada (ou observada)
// na rede. O status só anda para frente: pending -> confirmed ou
// pending -> failed, nunca volta.
type Transaction struct {
	ID          string // UUID gerado pelo banco
	Hash        string // Hash atribuído pela rede, único
	FromAddress string
	ToAddress   string
	AmountWei   *big.Int // Sempre em wei, nunca float
	Status      TransactionStatus
	Network     Network
	BlockNumber *int64
	GasUsed     *big.Int
	GasPrice    *big.Int
	WalletID    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
