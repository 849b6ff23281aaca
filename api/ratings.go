package api

import (
	"net/http"

	"gambler/challenge-service/domain/entities"

	"github.com/go-chi/chi"
)

// Leaderboard returns the top rated players for a game
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	records, err := h.services.Ratings.GetLeaderboard(r.Context(), entities.GameType(chi.URLParam(r, "game")), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if records == nil {
		records = []*entities.RatingRecord{}
	}
	h.ok(w, records)
}

// GetRating returns the caller's rating for a game
func (h *Handler) GetRating(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	record, err := h.services.Ratings.GetRating(r.Context(), userID, entities.GameType(chi.URLParam(r, "game")))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, record)
}
