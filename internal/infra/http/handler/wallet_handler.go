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

type WalletHandler struct {
	createWalletUC *usecase.CreateWalletUseCase
	getWalletUC    *usecase.GetWalletUseCase
}

func NewWalletHandler(createWalletUC *usecase.CreateWalletUseCase, getWalletUC *usecase.GetWalletUseCase) *WalletHandler {
	return &WalletHandler{
		createWalletUC: createWalletUC,
		getWalletUC:    getWalletUC,
	}
}

// WalletResponse nunca inclui o envelope da chave privada.
type WalletResponse struct {
	ID        int64  `json:"id"`
	Address   string `json:"address"`
	Network   string `json:"network"`
	OwnerID   int64  `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}

func toWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		Address:   w.Address,
		Network:   string(w.Network),
		OwnerID:   w.OwnerID,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID int64  `json:"owner_id"`
		Network string `json:"network"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Payload inválido")
		return
	}

	network, err := domain.ParseNetwork(req.Network)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	wallet, err := h.createWalletUC.Execute(r.Context(), usecase.CreateWalletInput{
		OwnerID: req.OwnerID,
		Network: network,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMainnetDisabled) {
			respondError(w, http.StatusForbidden, err.Error())
			return
		}
		log.Error().Err(err).Msg("Falha ao criar carteira")
		respondError(w, http.StatusInternalServerError, "Erro interno")
		return
	}

	respondJSON(w, http.StatusCreated, toWalletResponse(wallet))
}

func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	var ownerID *int64
	if raw := r.URL.Query().Get("owner_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "owner_id inválido")
			return
		}
		ownerID = &id
	}

	wallet, err := h.getWalletUC.Execute(r.Context(), address, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("Falha ao buscar carteira")
		respondError(w, http.StatusInternalServerError, "Erro interno")
		return
	}
	if wallet == nil {
		respondError(w, http.StatusNotFound, "Carteira não encontrada")
		return
	}

	respondJSON(w, http.StatusOK, toWalletResponse(wallet))
}

func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	network, err := domain.ParseNetwork(r.URL.Query().Get("network"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := h.getWalletUC.GetBalance(r.Context(), address, network)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("Falha ao consultar saldo")
		respondError(w, http.StatusBadGateway, "Falha ao consultar a rede")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"address":     address,
		"balance_wei": balance.String(),
		"balance_eth": domain.FormatWeiAsEther(balance),
	})
}

// Helpers para resposta JSON.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Falha ao codificar resposta JSON")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
