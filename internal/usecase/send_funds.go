package usecase

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/encryption"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// SendFundsInput define os dados necessários para um envio.
// Amount chega como decimal em ether ("1.5") e vira wei internamente.
type SendFundsInput struct {
	FromAddress string
	ToAddress   string
	Amount      string
	Network     domain.Network
}

// SendFundsUseCase orquestra o caminho completo de envio: validação,
// verificação de saldo e taxa, assinatura offline, broadcast e persistência
// atômica do registro local junto com o job de reconciliação.
type SendFundsUseCase struct {
	walletRepository      gateway.WalletRepository
	transactionRepository gateway.TransactionRepository
	jobRepository         gateway.ReconcileJobRepository
	transactionManager    gateway.TransactionManager // Nosso "Unit of Work"
	ledgers               gateway.LedgerRegistry
	signer                gateway.Signer
	keyCipher             gateway.KeyCipher
	auditTrail            gateway.AuditTrail
	enforceTestnet        bool
}

func NewSendFunds(
	walletRepo gateway.WalletRepository,
	transactionRepo gateway.TransactionRepository,
	jobRepo gateway.ReconcileJobRepository,
	txManager gateway.TransactionManager,
	ledgers gateway.LedgerRegistry,
	signer gateway.Signer,
	keyCipher gateway.KeyCipher,
	audit gateway.AuditTrail,
	enforceTestnet bool,
) *SendFundsUseCase {
	return &SendFundsUseCase{
		walletRepository:      walletRepo,
		transactionRepository: transactionRepo,
		jobRepository:         jobRepo,
		transactionManager:    txManager,
		ledgers:               ledgers,
		signer:                signer,
		keyCipher:             keyCipher,
		auditTrail:            audit,
		enforceTestnet:        enforceTestnet,
	}
}

// Execute roda a sequência de envio dentro de um único escopo atômico de
// persistência local. Qualquer falha antes do broadcast faz rollback sem
// efeito externo. O broadcast é o único passo irrevogável: se a persistência
// falhar DEPOIS dele, devolvemos AmbiguousOutcomeError carregando o hash em
// vez de descartá-lo silenciosamente.
func (u *SendFundsUseCase) Execute(ctx context.Context, input SendFundsInput) (*domain.Transaction, error) {
	if u.enforceTestnet && input.Network == domain.NetworkMainnet {
		u.auditSendFailure(ctx, nil, input, "", domain.ErrMainnetDisabled.Error())
		return nil, domain.ErrMainnetDisabled
	}

	from, err := domain.NormalizeAddress(input.FromAddress)
	if err != nil {
		u.auditSendFailure(ctx, nil, input, "", err.Error())
		return nil, err
	}
	to, err := domain.NormalizeAddress(input.ToAddress)
	if err != nil {
		u.auditSendFailure(ctx, nil, input, "", err.Error())
		return nil, err
	}

	amountWei, err := domain.ParseEtherAmount(input.Amount)
	if err != nil {
		u.auditSendFailure(ctx, nil, input, "", err.Error())
		return nil, err
	}

	ledger, err := u.ledgers.Ledger(input.Network)
	if err != nil {
		u.auditSendFailure(ctx, nil, input, "", err.Error())
		return nil, err
	}

	// Capturados de dentro do escopo atômico, para auditoria e retorno.
	var (
		created       *domain.Transaction
		broadcastHash string
		wallet        *domain.Wallet
		feeWei        *big.Int
	)

	runErr := u.transactionManager.Run(ctx, func(ctxTx context.Context) error {
		transactionObject := ctxTx.Value(gateway.TransactionKey)
		if transactionObject == nil {
			return fmt.Errorf("erro crítico: transação não encontrada no contexto")
		}
		walletRepoTx := u.walletRepository.WithTx(transactionObject)
		transactionRepoTx := u.transactionRepository.WithTx(transactionObject)
		jobRepoTx := u.jobRepository.WithTx(transactionObject)

		wallet, err = walletRepoTx.GetByAddress(ctxTx, from)
		if err != nil {
			return err
		}

		// Auditoria de tentativa: best-effort, não bloqueia o fluxo.
		u.auditTrail.LogPending(ctx, domain.AuditTransactionSend, domain.AuditEntry{
			OwnerID:       &wallet.OwnerID,
			WalletAddress: from,
			Metadata: map[string]any{
				"to_address": to,
				"amount":     input.Amount,
				"network":    input.Network,
			},
		})

		balance, err := ledger.BalanceAt(ctx, from)
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		if balance.Cmp(amountWei) < 0 {
			return domain.ErrInsufficientFunds
		}

		// A chave decifrada vive apenas deste ponto até a assinatura.
		privateKey, err := u.keyCipher.Decrypt(wallet.PrivateKeyEncrypted)
		if err != nil {
			return err
		}
		defer encryption.Zero(privateKey)

		gasPrice, err := ledger.GasPrice(ctx)
		if err != nil {
			return fmt.Errorf("failed to get gas price: %w", err)
		}
		nonce, err := ledger.NonceAt(ctx, from)
		if err != nil {
			return fmt.Errorf("failed to get nonce: %w", err)
		}

		// Estimativa consultiva (o gateway já faz fallback) + 10% de margem.
		gasLimit := ledger.EstimateGas(ctx, from, to, amountWei)
		gasLimit = gasLimit * 110 / 100

		feeWei = new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
		totalCost := new(big.Int).Add(amountWei, feeWei)
		if balance.Cmp(totalCost) < 0 {
			return domain.ErrInsufficientFundsForFee
		}

		rawTx, _, err := u.signer.SignTransfer(privateKey, gateway.TransferParams{
			To:        to,
			AmountWei: amountWei,
			Nonce:     nonce,
			GasLimit:  gasLimit,
			GasPrice:  gasPrice,
			ChainID:   ledger.ChainID(),
		})
		if err != nil {
			return fmt.Errorf("failed to sign transaction: %w", err)
		}
		encryption.Zero(privateKey) // Escopo do material de chave termina aqui.

		// Ponto de não retorno. Depois desta linha os fundos saíram.
		hash, err := ledger.Broadcast(ctx, rawTx)
		if err != nil {
			return err
		}
		broadcastHash = hash

		log.Info().
			Str("hash", hash).
			Str("from", from).
			Str("to", to).
			Str("amount", input.Amount).
			Msg("Transação enviada para a rede")

		created = &domain.Transaction{
			Hash:        hash,
			FromAddress: from,
			ToAddress:   to,
			AmountWei:   amountWei,
			Status:      domain.TransactionPending,
			Network:     input.Network,
			GasPrice:    gasPrice,
			WalletID:    wallet.ID,
		}
		if err := transactionRepoTx.Create(ctxTx, created); err != nil {
			return &domain.AmbiguousOutcomeError{Hash: hash, Err: err}
		}

		// Agendamento durável da reconciliação, no mesmo commit da Transaction.
		job := &domain.ReconcileJob{
			TxHash:        hash,
			TransactionID: created.ID,
			Network:       input.Network,
			Status:        domain.ReconcileDue,
			NextRunAt:     time.Now(),
		}
		if err := jobRepoTx.Create(ctxTx, job); err != nil {
			return &domain.AmbiguousOutcomeError{Hash: hash, Err: err}
		}

		return nil // Sucesso! O Commit será executado agora.
	})

	if runErr != nil {
		u.auditSendFailure(ctx, wallet, input, broadcastHash, runErr.Error())
		return nil, runErr
	}

	u.auditTrail.LogSuccess(ctx, domain.AuditTransactionSend, domain.AuditEntry{
		OwnerID:         &wallet.OwnerID,
		WalletAddress:   from,
		TransactionHash: broadcastHash,
		Metadata: map[string]any{
			"to_address": to,
			"amount":     input.Amount,
			"network":    input.Network,
			"fee_wei":    feeWei.String(),
			"gas_price":  created.GasPrice.String(),
		},
	})

	return created, nil
}

func (u *SendFundsUseCase) auditSendFailure(ctx context.Context, wallet *domain.Wallet, input SendFundsInput, hash, errMsg string) {
	entry := domain.AuditEntry{
		WalletAddress:   input.FromAddress,
		TransactionHash: hash,
		ErrorMessage:    errMsg,
		Metadata: map[string]any{
			"to_address": input.ToAddress,
			"amount":     input.Amount,
			"network":    input.Network,
		},
	}
	if wallet != nil {
		entry.OwnerID = &wallet.OwnerID
		entry.WalletAddress = wallet.Address
	}
	u.auditTrail.LogFailure(ctx, domain.AuditTransactionSend, errMsg, entry)
}
