package ethereum

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

// History nunca devolve erro: o indexador primário (Etherscan) é tentado
// primeiro; "sem resultados" explícito dele é autoritativo. Falha de
// transporte ou de parse cai silenciosamente para a consulta nativa do nó.
// Se tudo secar, lista vazia.
func (g *Gateway) History(ctx context.Context, address string, limit int) []gateway.HistoryEntry {
	if g.etherscan != nil {
		entries, ok := g.etherscan.transactionList(ctx, address, limit)
		if ok {
			return entries
		}
		log.Warn().Str("address", address).Msg("Indexador primário indisponível, fallback para o nó")
	}
	return g.historyFromNode(ctx, address, limit)
}

// --- Etherscan (indexador primário) ---

type etherscanClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newEtherscanClient(baseURL, apiKey string) *etherscanClient {
	return &etherscanClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type etherscanTx struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	TxReceiptStatus string `json:"txreceipt_status"`
	BlockNumber     string `json:"blockNumber"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
	TimeStamp       string `json:"timeStamp"`
}

// transactionList retorna (entradas, true) quando a resposta do indexador é
// autoritativa (com ou sem resultados) e (nil, false) quando o chamador deve
// fazer fallback.
func (c *etherscanClient) transactionList(ctx context.Context, address string, limit int) ([]gateway.HistoryEntry, bool) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("sort", "desc")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("Requisição ao indexador falhou")
		return nil, false
	}
	defer resp.Body.Close()

	var body etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Warn().Err(err).Msg("Resposta do indexador ilegível")
		return nil, false
	}

	// "No transactions found" é resposta válida e autoritativa.
	if body.Message == "No transactions found" || (body.Status == "0" && string(body.Result) == `"[]"`) {
		return []gateway.HistoryEntry{}, true
	}
	if body.Status != "1" {
		log.Warn().Str("message", body.Message).Msg("Indexador retornou erro")
		return nil, false
	}

	var txs []etherscanTx
	if err := json.Unmarshal(body.Result, &txs); err != nil {
		log.Warn().Err(err).Msg("Resultado do indexador ilegível")
		return nil, false
	}

	if len(txs) > limit {
		txs = txs[:limit]
	}
	entries := make([]gateway.HistoryEntry, 0, len(txs))
	for _, tx := range txs {
		entries = append(entries, tx.toHistoryEntry())
	}
	return entries, true
}

func (tx etherscanTx) toHistoryEntry() gateway.HistoryEntry {
	entry := gateway.HistoryEntry{
		Hash:      tx.Hash,
		From:      tx.From,
		To:        tx.To,
		AmountWei: parseBigInt(tx.Value),
		GasUsed:   parseBigIntPtr(tx.GasUsed),
		GasPrice:  parseBigIntPtr(tx.GasPrice),
	}

	switch tx.TxReceiptStatus {
	case "1":
		entry.Status = domain.TransactionConfirmed
	case "0":
		entry.Status = domain.TransactionFailed
	default:
		entry.Status = domain.TransactionPending
	}

	if n, err := strconv.ParseInt(tx.BlockNumber, 10, 64); err == nil {
		entry.BlockNumber = &n
	}
	if ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64); err == nil {
		t := time.Unix(ts, 0)
		entry.Timestamp = &t
	}
	return entry
}

// --- Fallback nativo do nó (alchemy_getAssetTransfers) ---

type assetTransfersResult struct {
	Transfers []assetTransfer `json:"transfers"`
}

type assetTransfer struct {
	Hash     string   `json:"hash"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Value    *float64 `json:"value"` // em ether, decimal
	BlockNum string   `json:"blockNum"`
}

func (g *Gateway) historyFromNode(ctx context.Context, address string, limit int) []gateway.HistoryEntry {
	params := map[string]any{
		"fromBlock":        "0x0",
		"toBlock":          "latest",
		"fromAddress":      address,
		"category":         []string{"external"},
		"maxCount":         hexutil.EncodeUint64(uint64(limit)),
		"excludeZeroValue": false,
	}

	var result assetTransfersResult
	if err := g.client.Client().CallContext(ctx, &result, "alchemy_getAssetTransfers", params); err != nil {
		// Histórico é best-effort até o fim: sem provedor, sem resultados.
		log.Warn().Err(err).Str("address", address).Msg("Consulta nativa de histórico falhou")
		return nil
	}

	transfers := result.Transfers
	if len(transfers) > limit {
		transfers = transfers[:limit]
	}

	entries := make([]gateway.HistoryEntry, 0, len(transfers))
	for _, tr := range transfers {
		entry := gateway.HistoryEntry{
			Hash:      tr.Hash,
			From:      tr.From,
			To:        tr.To,
			AmountWei: etherFloatToWei(tr.Value),
			Status:    domain.TransactionPending,
		}
		if tr.BlockNum != "" {
			if n, err := hexutil.DecodeUint64(tr.BlockNum); err == nil {
				blockNumber := int64(n)
				entry.BlockNumber = &blockNumber
				entry.Status = domain.TransactionConfirmed
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseBigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func parseBigIntPtr(s string) *big.Int {
	if s == "" {
		return nil
	}
	return parseBigInt(s)
}

// O fallback devolve o valor como decimal em ether; convertemos para wei
// com decimal exato para não herdar arredondamento de float.
func etherFloatToWei(v *float64) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	d := decimal.NewFromFloat(*v).Mul(decimal.New(1, 18))
	return d.BigInt()
}
