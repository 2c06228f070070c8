package usecase

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

func newHistoryFixture(t *testing.T) (*TransactionHistoryUseCase, *fakeWalletRepo, *fakeTransactionRepo, *fakeLedger) {
	t.Helper()
	walletRepo := newFakeWalletRepo()
	txRepo := newFakeTransactionRepo()
	ledger := newFakeLedger()
	uc := NewTransactionHistory(walletRepo, txRepo, newFakeRegistry(domain.NetworkTestnet, ledger))
	return uc, walletRepo, txRepo, ledger
}

func TestTransactionHistory_MergesAndDedupes(t *testing.T) {
	uc, walletRepo, txRepo, ledger := newHistoryFixture(t)

	walletRepo.wallets[fromAddr] = &domain.Wallet{ID: 1, Address: fromAddr, Network: domain.NetworkTestnet}

	now := time.Now()
	txRepo.created = append(txRepo.created, &domain.Transaction{
		ID: "tx-local", Hash: "0xaaa", WalletID: 1,
		Network: domain.NetworkTestnet, Status: domain.TransactionPending,
		CreatedAt: now,
	})

	older := now.Add(-time.Hour)
	ledger.history = []gateway.HistoryEntry{
		{Hash: "0xaaa", From: fromAddr, To: toAddr, Status: domain.TransactionConfirmed, Timestamp: &now}, // duplicado
		{Hash: "0xbbb", From: toAddr, To: fromAddr, AmountWei: big.NewInt(500), Status: domain.TransactionConfirmed, Timestamp: &older},
	}

	got, err := uc.Execute(context.Background(), fromAddr, domain.NetworkTestnet, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// O registro local vence o duplicado do provedor; mais recente primeiro.
	assert.Equal(t, "0xaaa", got[0].Hash)
	assert.Equal(t, domain.TransactionPending, got[0].Status)
	assert.Equal(t, "0xbbb", got[1].Hash)
}

func TestTransactionHistory_UncustodiedAddressUsesProviderOnly(t *testing.T) {
	uc, _, _, ledger := newHistoryFixture(t)

	ts := time.Now()
	ledger.history = []gateway.HistoryEntry{
		{Hash: "0xccc", From: fromAddr, To: toAddr, Status: domain.TransactionConfirmed, Timestamp: &ts},
	}

	got, err := uc.Execute(context.Background(), fromAddr, domain.NetworkTestnet, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0xccc", got[0].Hash)
}

func TestTransactionHistory_TruncatesToLimit(t *testing.T) {
	uc, _, _, ledger := newHistoryFixture(t)

	base := time.Now()
	for i := 0; i < 5; i++ {
		ts := base.Add(-time.Duration(i) * time.Minute)
		ledger.history = append(ledger.history, gateway.HistoryEntry{
			Hash:      "0xhash" + string(rune('a'+i)),
			Status:    domain.TransactionConfirmed,
			Timestamp: &ts,
		})
	}

	got, err := uc.Execute(context.Background(), fromAddr, domain.NetworkTestnet, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	// Mais recente primeiro.
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
	assert.True(t, got[1].CreatedAt.After(got[2].CreatedAt))
}

func TestTransactionHistory_EmptyWhenNothingKnown(t *testing.T) {
	uc, _, _, _ := newHistoryFixture(t)

	got, err := uc.Execute(context.Background(), fromAddr, domain.NetworkTestnet, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransactionHistory_InvalidAddress(t *testing.T) {
	uc, _, _, _ := newHistoryFixture(t)

	_, err := uc.Execute(context.Background(), "nope", domain.NetworkTestnet, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}
