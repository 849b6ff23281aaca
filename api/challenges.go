package api

import (
	"fmt"
	"net/http"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"
	"gambler/challenge-service/domain/services"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type createChallengeRequest struct {
	OpponentID uuid.UUID         `json:"opponentId"`
	GameType   entities.GameType `json:"gameType"`
	Stake      decimal.Decimal   `json:"stake"`
	// Odds of zero asks for a rating-based quote
	Odds int `json:"odds"`
}

type counterOfferRequest struct {
	Stake decimal.Decimal `json:"stake"`
	Odds  int             `json:"odds"`
}

type reportResultRequest struct {
	WinnerID uuid.UUID `json:"winnerId"`
}

// CreateChallenge opens a challenge against another account
func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req createChallengeRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err))
		return
	}

	challenge, err := h.services.Challenges.CreateChallenge(r.Context(), interfaces.CreateChallengeParams{
		ChallengerID: userID,
		ChallengedID: req.OpponentID,
		GameType:     req.GameType,
		Stake:        req.Stake,
		Odds:         req.Odds,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.created(w, challenge)
}

// ListChallenges returns the caller's challenges grouped into dashboard projections
func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	challenges, err := h.services.Challenges.ListForUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, services.Project(challenges, userID))
}

// GetChallenge returns one challenge the caller is party to
func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, err := h.challengeRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	challenge, err := h.services.Challenges.GetChallenge(r.Context(), challengeID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !challenge.IsParticipant(userID) {
		h.respondError(w, r, fmt.Errorf("%w: challenge %s", entities.ErrNotFound, challengeID))
		return
	}
	h.ok(w, challenge)
}

// CounterOffer re-prices a challenge on the caller's turn
func (h *Handler) CounterOffer(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, err := h.challengeRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req counterOfferRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err))
		return
	}

	challenge, err := h.services.Challenges.CounterOffer(r.Context(), challengeID, userID, req.Stake, req.Odds)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, challenge)
}

// AcceptChallenge locks the challenge at its current terms
func (h *Handler) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, err := h.challengeRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	challenge, err := h.services.Challenges.AcceptChallenge(r.Context(), challengeID, userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, challenge)
}

// DeclineChallenge closes a negotiation
func (h *Handler) DeclineChallenge(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, err := h.challengeRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	challenge, err := h.services.Challenges.DeclineChallenge(r.Context(), challengeID, userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, challenge)
}

// ReportResult records who the caller says won
func (h *Handler) ReportResult(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, err := h.challengeRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req reportResultRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err))
		return
	}

	outcome, err := h.services.Results.ReportResult(r.Context(), challengeID, userID, req.WinnerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, outcome)
}

// SettleChallenge re-evaluates a challenge whose reports are both in
func (h *Handler) SettleChallenge(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, err := h.challengeRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	challenge, err := h.services.Challenges.GetChallenge(r.Context(), challengeID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !challenge.IsParticipant(userID) {
		h.respondError(w, r, fmt.Errorf("%w: challenge %s", entities.ErrNotFound, challengeID))
		return
	}

	outcome, err := h.services.Results.SettleChallenge(r.Context(), challengeID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, outcome)
}

// QuoteOdds prices a challenge between the caller and an opponent
func (h *Handler) QuoteOdds(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	opponentID, err := pathUUID(r.URL.Query().Get("opponent"), "opponent")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	gameType := entities.GameType(r.URL.Query().Get("game"))

	quote, err := h.services.Challenges.QuoteOdds(r.Context(), userID, opponentID, gameType)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, quote)
}

func (h *Handler) challengeRequest(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUserID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	challengeID, err := pathUUID(chi.URLParam(r, "id"), "challenge id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, challengeID, nil
}
