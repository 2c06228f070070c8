package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
)

func newCreateWalletFixture(t *testing.T) (*CreateWalletUseCase, *fakeWalletRepo, *fakeKeyGenerator, *fakeAuditTrail) {
	t.Helper()
	walletRepo := newFakeWalletRepo()
	keyGen := &fakeKeyGenerator{
		key:     []byte("4c0883a69102937d6231471b5dbb6204"),
		address: fromAddr,
	}
	audit := &fakeAuditTrail{}
	uc := NewCreateWallet(walletRepo, keyGen, &fakeKeyCipher{}, audit, true)
	return uc, walletRepo, keyGen, audit
}

func TestCreateWallet_Success(t *testing.T) {
	uc, walletRepo, _, audit := newCreateWalletFixture(t)

	wallet, err := uc.Execute(context.Background(), CreateWalletInput{OwnerID: 42, Network: domain.NetworkTestnet})
	require.NoError(t, err)
	require.NotNil(t, wallet)

	assert.Equal(t, fromAddr, wallet.Address)
	assert.Equal(t, int64(42), wallet.OwnerID)
	// A chave privada só existe em forma de envelope.
	assert.Equal(t, "iv:salt:tag:ct", wallet.PrivateKeyEncrypted)

	stored, ok := walletRepo.wallets[fromAddr]
	require.True(t, ok)
	assert.Equal(t, wallet, stored)
	assert.Equal(t, domain.AuditSuccess, audit.lastStatus())
}

func TestCreateWallet_ZeroesGeneratedKey(t *testing.T) {
	uc, _, keyGen, _ := newCreateWalletFixture(t)

	_, err := uc.Execute(context.Background(), CreateWalletInput{OwnerID: 42, Network: domain.NetworkTestnet})
	require.NoError(t, err)

	for i, b := range keyGen.key {
		assert.Zerof(t, b, "byte %d da chave não foi zerado", i)
	}
}

func TestCreateWallet_MainnetBlockedByPolicy(t *testing.T) {
	uc, walletRepo, _, audit := newCreateWalletFixture(t)

	_, err := uc.Execute(context.Background(), CreateWalletInput{OwnerID: 42, Network: domain.NetworkMainnet})
	assert.ErrorIs(t, err, domain.ErrMainnetDisabled)
	assert.Empty(t, walletRepo.wallets)
	assert.Equal(t, domain.AuditFailure, audit.lastStatus())
}

func TestCreateWallet_PersistFailure(t *testing.T) {
	uc, walletRepo, _, audit := newCreateWalletFixture(t)
	walletRepo.err = errors.New("db down")

	_, err := uc.Execute(context.Background(), CreateWalletInput{OwnerID: 42, Network: domain.NetworkTestnet})
	assert.Error(t, err)
	assert.Equal(t, domain.AuditFailure, audit.lastStatus())
}
