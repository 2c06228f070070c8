package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/usecase"
)

type TransactionHandler struct {
	sendFundsUC      *usecase.SendFundsUseCase
	getTransactionUC *usecase.GetTransactionUseCase
	historyUC        *usecase.TransactionHistoryUseCase
}

func NewTransactionHandler(
	sendFundsUC *usecase.SendFundsUseCase,
	getTransactionUC *usecase.GetTransactionUseCase,
	historyUC *usecase.TransactionHistoryUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		sendFundsUC:      sendFundsUC,
		getTransactionUC: getTransactionUC,
		historyUC:        historyUC,
	}
}

type SendFundsRequest struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      string `json:"amount"` // decimal em ether
	Network     string `json:"network"`
}

type TransactionResponse struct {
	ID          string `json:"id,omitempty"`
	Hash        string `json:"hash"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	AmountWei   string `json:"amount_wei"`
	Status      string `json:"status"`
	Network     string `json:"network"`
	BlockNumber *int64 `json:"block_number,omitempty"`
	GasUsed     string `json:"gas_used,omitempty"`
	GasPrice    string `json:"gas_price,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID,
		Hash:        t.Hash,
		FromAddress: t.FromAddress,
		ToAddress:   t.ToAddress,
		Status:      string(t.Status),
		Network:     string(t.Network),
		BlockNumber: t.BlockNumber,
	}
	if t.AmountWei != nil {
		resp.AmountWei = t.AmountWei.String()
	}
	if t.GasUsed != nil {
		resp.GasUsed = t.GasUsed.String()
	}
	if t.GasPrice != nil {
		resp.GasPrice = t.GasPrice.String()
	}
	if !t.CreatedAt.IsZero() {
		resp.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *TransactionHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendFundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Payload inválido")
		return
	}

	network, err := domain.ParseNetwork(req.Network)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.sendFundsUC.Execute(r.Context(), usecase.SendFundsInput{
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		Amount:      req.Amount,
		Network:     network,
	})
	if err != nil {
		h.respondSendError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// Mapeamento de erros de domínio -> HTTP status code.
func (h *TransactionHandler) respondSendError(w http.ResponseWriter, err error) {
	var ambiguous *domain.AmbiguousOutcomeError

	switch {
	case errors.Is(err, domain.ErrMainnetDisabled):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidAddress), errors.Is(err, domain.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrWalletNotFound):
		respondError(w, http.StatusNotFound, "Carteira não encontrada")
	case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrInsufficientFundsForFee):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &ambiguous):
		// O broadcast aconteceu: o cliente PRECISA do hash para acompanhar.
		log.Error().Err(err).Str("hash", ambiguous.Hash).Msg("Desfecho ambíguo em envio de fundos")
		respondJSON(w, http.StatusBadGateway, map[string]string{
			"error": "transaction was broadcast but local persistence failed",
			"hash":  ambiguous.Hash,
		})
	case errors.Is(err, domain.ErrBroadcast):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		log.Error().Err(err).Msg("Erro interno ao enviar fundos")
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

func (h *TransactionHandler) GetByHash(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	tx, err := h.getTransactionUC.Execute(r.Context(), hash)
	if err != nil {
		log.Error().Err(err).Msg("Falha ao buscar transação")
		respondError(w, http.StatusInternalServerError, "Erro interno")
		return
	}
	if tx == nil {
		respondError(w, http.StatusNotFound, "Transação não encontrada")
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	network, err := domain.ParseNetwork(r.URL.Query().Get("network"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	txs, err := h.historyUC.Execute(r.Context(), address, network, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("Falha ao montar histórico")
		respondError(w, http.StatusInternalServerError, "Erro interno")
		return
	}

	resp := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, toTransactionResponse(tx))
	}
	respondJSON(w, http.StatusOK, resp)
}
