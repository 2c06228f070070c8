package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMainnetDisabled         = errors.New("mainnet transactions are not allowed, please use testnet")
	ErrInvalidAddress          = errors.New("invalid ethereum address")
	ErrInvalidNetwork          = errors.New("network must be testnet or mainnet")
	ErrInvalidAmount           = errors.New("amount must be a positive decimal number")
	ErrWalletNotFound          = errors.New("wallet not found")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrInsufficientFundsForFee = errors.New("insufficient funds to cover gas fees")
	ErrBroadcast               = errors.New("failed to broadcast transaction")
	ErrEnvelopeFormat          = errors.New("invalid encrypted key format")
	ErrEnvelopeIntegrity       = errors.New("failed to decrypt key: authentication failed")
	ErrEncryptionKeyTooShort   = errors.New("ENCRYPTION_KEY must be at least 32 bytes long")
)

// AmbiguousOutcomeError indica o pior cenário possível: o broadcast foi aceito
// pela rede, mas a persistência local falhou depois. Os fundos saíram da
// custódia sem registro local, então carregamos o hash para permitir
// reconciliação manual depois.
type AmbiguousOutcomeError struct {
	Hash string
	Err  error
}

func (e *AmbiguousOutcomeError) Error() string {
	return fmt.Sprintf("transaction %s was broadcast but local persistence failed: %v", e.Hash, e.Err)
}

func (e *AmbiguousOutcomeError) Unwrap() error {
	return e.Err
}
