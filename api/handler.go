package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"gambler/challenge-service/config"
	"gambler/challenge-service/domain/interfaces"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// NotificationReader drains a user's notification inbox
type NotificationReader interface {
	Notifications(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error)
}

// RequestRecorder receives one observation per served request
type RequestRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Services bundles what the HTTP handlers call into
type Services struct {
	Challenges    interfaces.ChallengeService
	Results       interfaces.ResultService
	Ratings       interfaces.RatingService
	Wallet        interfaces.WalletService
	Notifications NotificationReader
	Metrics       RequestRecorder
	// Ping reports whether the backing store is reachable. May be nil.
	Ping func(ctx context.Context) error
}

// Handler serves the challenge service HTTP API
type Handler struct {
	config    *config.Config
	tokenAuth *jwtauth.JWTAuth
	services  Services
}

// Response is the envelope every endpoint writes
type Response struct {
	Message string      `json:"message,omitempty"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewHandler creates a handler signing and verifying tokens with the configured secret
func NewHandler(services Services) *Handler {
	cfg := config.Get()
	return &Handler{
		config:    cfg,
		tokenAuth: NewTokenAuth(cfg.JWTSecret),
		services:  services,
	}
}

// CreateResponse writes rsp as JSON with its code as the status
func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

func (h *Handler) ok(w http.ResponseWriter, data interface{}) {
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: data})
}

func (h *Handler) created(w http.ResponseWriter, data interface{}) {
	h.CreateResponse(w, Response{Code: http.StatusCreated, Data: data})
}

// HealthHandler reports whether the service and its database are up
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.services.Ping != nil {
		if err := h.services.Ping(r.Context()); err != nil {
			log.WithError(err).Warn("Health check failed")
			h.CreateResponse(w, Response{Code: http.StatusServiceUnavailable, Error: "database unavailable"})
			return
		}
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Message: "challenge service is running"})
}

// decodeBody reads a JSON request body into dst, rejecting unknown fields
func decodeBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
