// Package handler exposes the password-reset verification flow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"enroll/internal/platform/middleware"
	"enroll/internal/transport/http/shared"
	dErrors "enroll/pkg/domain-errors"
)

// Flow defines the reset-flow operations the handler drives.
type Flow interface {
	Send(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
	CooldownRemaining(email string) float64
}

// Handler handles the /reset endpoints.
type Handler struct {
	logger *slog.Logger
	flow   Flow
}

// New creates a new reset Handler.
func New(flow Flow, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, flow: flow}
}

// Register registers the reset routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	resetRouter := chi.NewRouter()
	resetRouter.Use(middleware.Recovery(h.logger))
	resetRouter.Use(middleware.RequestID)
	resetRouter.Use(middleware.Logger(h.logger))
	resetRouter.Use(middleware.Timeout(30 * time.Second))
	resetRouter.Use(middleware.ContentTypeJSON)

	resetRouter.Post("/reset/send", h.handleSend)
	resetRouter.Post("/reset/resend", h.handleSend)
	resetRouter.Post("/reset/verify", h.handleVerify)

	r.Mount("/", resetRouter)
}

type sendRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type statusResponse struct {
	Status   string  `json:"status"`
	ResendIn float64 `json:"resend_in_seconds,omitempty"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.flow.Send(ctx, req.Email); err != nil {
		h.logger.WarnContext(ctx, "reset send failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, statusResponse{
		Status:   "sent",
		ResendIn: h.flow.CooldownRemaining(req.Email),
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.flow.Verify(ctx, req.Email, req.Code); err != nil {
		h.logger.WarnContext(ctx, "reset verify failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, statusResponse{Status: "verified"})
}
