package api

import (
	"encoding/json"
	"net/http"
)

// Notifications drains and returns the caller's inbox
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if h.services.Notifications == nil {
		h.ok(w, []json.RawMessage{})
		return
	}

	items, err := h.services.Notifications.Notifications(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	h.ok(w, items)
}
