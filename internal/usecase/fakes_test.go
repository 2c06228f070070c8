package usecase

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// Fakes em memória para os ports. Sem mock framework: os usecases dependem
// de interfaces pequenas, implementações diretas ficam mais legíveis.

// --- Unit of Work ---

type fakeTxObject struct{}

// fakeUow simula o escopo atômico: tira um snapshot dos repositórios antes
// de rodar fn e restaura em caso de erro, imitando o rollback real.
type fakeUow struct {
	txRepo  *fakeTransactionRepo
	jobRepo *fakeReconcileJobRepo
}

func (u *fakeUow) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	txSnapshot := len(u.txRepo.created)
	jobSnapshot := len(u.jobRepo.created)

	ctxTx := context.WithValue(ctx, gateway.TransactionKey, fakeTxObject{})
	if err := fn(ctxTx); err != nil {
		u.txRepo.created = u.txRepo.created[:txSnapshot]
		u.jobRepo.created = u.jobRepo.created[:jobSnapshot]
		return err
	}
	return nil
}

// --- Wallet ---

type fakeWalletRepo struct {
	wallets map[string]*domain.Wallet // keyed por endereço checksummed
	err     error
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[string]*domain.Wallet)}
}

func (r *fakeWalletRepo) Create(ctx context.Context, wallet *domain.Wallet) error {
	if r.err != nil {
		return r.err
	}
	wallet.ID = int64(len(r.wallets) + 1)
	wallet.CreatedAt = time.Now()
	r.wallets[wallet.Address] = wallet
	return nil
}

func (r *fakeWalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	if r.err != nil {
		return nil, r.err
	}
	wallet, ok := r.wallets[address]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return wallet, nil
}

func (r *fakeWalletRepo) GetByAddressAndOwner(ctx context.Context, address string, ownerID int64) (*domain.Wallet, error) {
	wallet, err := r.GetByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if wallet.OwnerID != ownerID {
		return nil, domain.ErrWalletNotFound
	}
	return wallet, nil
}

func (r *fakeWalletRepo) WithTx(tx gateway.TransactionObject) gateway.WalletRepository { return r }

// --- Transaction ---

type fakeTransactionRepo struct {
	created   []*domain.Transaction
	outcomes  map[string]domain.TransactionStatus
	createErr error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{outcomes: make(map[string]domain.TransactionStatus)}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	tx.ID = "tx-" + tx.Hash
	tx.CreatedAt = time.Now()
	r.created = append(r.created, tx)
	return nil
}

func (r *fakeTransactionRepo) GetByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	for _, tx := range r.created {
		if tx.Hash == hash {
			return tx, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) ListByWallet(ctx context.Context, walletID int64, network domain.Network, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, tx := range r.created {
		if tx.WalletID == walletID && tx.Network == network {
			out = append(out, tx)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTransactionRepo) UpdateOutcome(ctx context.Context, id string, status domain.TransactionStatus, blockNumber int64, gasUsed *big.Int) error {
	r.outcomes[id] = status
	return nil
}

func (r *fakeTransactionRepo) WithTx(tx gateway.TransactionObject) gateway.TransactionRepository {
	return r
}

// --- ReconcileJob ---

type fakeReconcileJobRepo struct {
	created     []*domain.ReconcileJob
	rescheduled map[string]int // hash -> attempts na última remarcação
	done        map[string]bool
	exhausted   map[string]bool
	createErr   error
}

func newFakeReconcileJobRepo() *fakeReconcileJobRepo {
	return &fakeReconcileJobRepo{
		rescheduled: make(map[string]int),
		done:        make(map[string]bool),
		exhausted:   make(map[string]bool),
	}
}

func (r *fakeReconcileJobRepo) Create(ctx context.Context, job *domain.ReconcileJob) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, job)
	return nil
}

func (r *fakeReconcileJobRepo) ClaimDue(ctx context.Context, limit int) ([]*domain.ReconcileJob, error) {
	var out []*domain.ReconcileJob
	for _, job := range r.created {
		if job.Status == domain.ReconcileDue && len(out) < limit {
			out = append(out, job)
		}
	}
	return out, nil
}

func (r *fakeReconcileJobRepo) Reschedule(ctx context.Context, txHash string, attempts int, nextRunAt time.Time) error {
	r.rescheduled[txHash] = attempts
	return nil
}

func (r *fakeReconcileJobRepo) MarkDone(ctx context.Context, txHash string) error {
	r.done[txHash] = true
	return nil
}

func (r *fakeReconcileJobRepo) MarkExhausted(ctx context.Context, txHash string) error {
	r.exhausted[txHash] = true
	return nil
}

func (r *fakeReconcileJobRepo) WithTx(tx gateway.TransactionObject) gateway.ReconcileJobRepository {
	return r
}

// --- Ledger ---

type fakeLedger struct {
	chainID  *big.Int
	balance  *big.Int
	gasPrice *big.Int
	nonce    uint64
	gasEst   uint64

	broadcastHash string
	broadcastErr  error
	broadcasts    int

	receipt    *gateway.Receipt
	receiptErr error

	history []gateway.HistoryEntry
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		chainID:       big.NewInt(11155111),
		balance:       mustWei("2000000000000000000"), // 2 ETH
		gasPrice:      big.NewInt(1_000_000_000),      // 1 gwei
		nonce:         7,
		gasEst:        21000,
		broadcastHash: "0xhash1",
	}
}

func mustWei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad wei literal: " + s)
	}
	return v
}

func (l *fakeLedger) ChainID() *big.Int { return new(big.Int).Set(l.chainID) }

func (l *fakeLedger) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	return new(big.Int).Set(l.balance), nil
}

func (l *fakeLedger) NonceAt(ctx context.Context, address string) (uint64, error) {
	return l.nonce, nil
}

func (l *fakeLedger) GasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(l.gasPrice), nil
}

func (l *fakeLedger) EstimateGas(ctx context.Context, from, to string, amountWei *big.Int) uint64 {
	return l.gasEst
}

func (l *fakeLedger) Broadcast(ctx context.Context, rawTx []byte) (string, error) {
	if l.broadcastErr != nil {
		return "", l.broadcastErr
	}
	l.broadcasts++
	return l.broadcastHash, nil
}

func (l *fakeLedger) Receipt(ctx context.Context, hash string) (*gateway.Receipt, error) {
	if l.receiptErr != nil {
		return nil, l.receiptErr
	}
	return l.receipt, nil
}

func (l *fakeLedger) History(ctx context.Context, address string, limit int) []gateway.HistoryEntry {
	return l.history
}

type fakeRegistry struct {
	ledgers map[domain.Network]gateway.Ledger
}

func newFakeRegistry(network domain.Network, ledger gateway.Ledger) *fakeRegistry {
	return &fakeRegistry{ledgers: map[domain.Network]gateway.Ledger{network: ledger}}
}

func (r *fakeRegistry) Ledger(network domain.Network) (gateway.Ledger, error) {
	ledger, ok := r.ledgers[network]
	if !ok {
		return nil, domain.ErrInvalidNetwork
	}
	return ledger, nil
}

// --- Signer / chaves ---

type fakeSigner struct {
	err error

	// Guardamos a REFERÊNCIA (não cópia) para o teste verificar que o
	// material de chave foi zerado depois da assinatura.
	seenKey    []byte
	seenParams gateway.TransferParams
}

func (s *fakeSigner) SignTransfer(privateKeyHex []byte, params gateway.TransferParams) ([]byte, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	s.seenKey = privateKeyHex
	s.seenParams = params
	return []byte("raw-signed-tx"), "0xhash1", nil
}

type fakeKeyCipher struct {
	plaintext  []byte
	decryptErr error
	encryptErr error
}

func (c *fakeKeyCipher) Encrypt(secret []byte) (string, error) {
	if c.encryptErr != nil {
		return "", c.encryptErr
	}
	return "iv:salt:tag:ct", nil
}

func (c *fakeKeyCipher) Decrypt(envelope string) ([]byte, error) {
	if c.decryptErr != nil {
		return nil, c.decryptErr
	}
	out := make([]byte, len(c.plaintext))
	copy(out, c.plaintext)
	return out, nil
}

type fakeKeyGenerator struct {
	key     []byte
	address string
	err     error
}

func (g *fakeKeyGenerator) Generate() ([]byte, string, error) {
	if g.err != nil {
		return nil, "", g.err
	}
	return g.key, g.address, nil
}

// --- Audit ---

type auditRecord struct {
	action domain.AuditAction
	status domain.AuditStatus
	entry  domain.AuditEntry
}

type fakeAuditTrail struct {
	mu      sync.Mutex
	records []auditRecord
}

func (a *fakeAuditTrail) LogSuccess(ctx context.Context, action domain.AuditAction, entry domain.AuditEntry) {
	a.record(action, domain.AuditSuccess, entry)
}

func (a *fakeAuditTrail) LogFailure(ctx context.Context, action domain.AuditAction, errorMessage string, entry domain.AuditEntry) {
	entry.ErrorMessage = errorMessage
	a.record(action, domain.AuditFailure, entry)
}

func (a *fakeAuditTrail) LogPending(ctx context.Context, action domain.AuditAction, entry domain.AuditEntry) {
	a.record(action, domain.AuditPending, entry)
}

func (a *fakeAuditTrail) record(action domain.AuditAction, status domain.AuditStatus, entry domain.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, auditRecord{action: action, status: status, entry: entry})
}

func (a *fakeAuditTrail) lastStatus() domain.AuditStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.records) == 0 {
		return ""
	}
	return a.records[len(a.records)-1].status
}
