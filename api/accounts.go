package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gambler/challenge-service/domain/entities"

	"github.com/shopspring/decimal"
)

type registerRequest struct {
	Username string `json:"username"`
}

type registerResponse struct {
	Account *entities.Account `json:"account"`
	Token   string            `json:"token"`
}

type walletRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// RegisterAccount creates an account and returns a token for it
func (h *Handler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err))
		return
	}

	account, err := h.services.Wallet.RegisterAccount(r.Context(), req.Username)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	token, err := IssueToken(h.tokenAuth, account.ID, time.Now())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.created(w, registerResponse{Account: account, Token: token})
}

// GetAccount returns the caller's account
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	account, err := h.services.Wallet.GetAccount(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, account)
}

// ListLedger returns the caller's most recent ledger entries
func (h *Handler) ListLedger(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	entries, err := h.services.Wallet.GetLedger(r.Context(), userID, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, entries)
}

// Deposit charges the payment method and credits the caller
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req walletRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err))
		return
	}

	account, err := h.services.Wallet.Deposit(r.Context(), userID, req.Amount, req.Method)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, account)
}

// Withdraw reserves funds and queues a payout request
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req walletRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err))
		return
	}

	withdrawal, err := h.services.Wallet.Withdraw(r.Context(), userID, req.Amount, req.Method)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusAccepted, Data: withdrawal})
}

// queryInt reads an optional integer query parameter, returning 0 when absent
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", entities.ErrInvalidInput, name)
	}
	return value, nil
}
