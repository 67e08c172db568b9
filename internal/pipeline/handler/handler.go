// Package handler exposes the onboarding pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"enroll/internal/audit"
	"enroll/internal/draft"
	"enroll/internal/pipeline"
	"enroll/internal/platform/middleware"
	"enroll/internal/transport/http/shared"
	dErrors "enroll/pkg/domain-errors"
)

// Service defines the pipeline operations the handler drives.
type Service interface {
	CreateRun(ctx context.Context, seed *draft.SignupSeed) (pipeline.Snapshot, error)
	Snapshot(runID string) (pipeline.Snapshot, error)
	KycValues(ctx context.Context, runID string) (pipeline.KycInput, error)
	SubmitKyc(ctx context.Context, runID string, input pipeline.KycInput) (pipeline.Snapshot, error)
	SubmitDetails(ctx context.Context, runID string, input pipeline.DetailsInput) (pipeline.Snapshot, error)
	ConfirmOTP(ctx context.Context, runID, code string) (pipeline.Snapshot, error)
	ResendOTP(ctx context.Context, runID string) (pipeline.Snapshot, error)
	GoBack(ctx context.Context, runID string) (pipeline.Snapshot, error)
	Trail(ctx context.Context, runID string) ([]audit.Event, error)
}

// Handler handles the /runs endpoints.
type Handler struct {
	logger   *slog.Logger
	pipeline Service
}

// New creates a new pipeline Handler.
func New(pipeline Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, pipeline: pipeline}
}

// Register registers the pipeline routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	runRouter := chi.NewRouter()
	runRouter.Use(middleware.Recovery(h.logger))
	runRouter.Use(middleware.RequestID)
	runRouter.Use(middleware.Device)
	runRouter.Use(middleware.Logger(h.logger))
	runRouter.Use(middleware.Timeout(30 * time.Second))
	runRouter.Use(middleware.ContentTypeJSON)

	runRouter.Post("/runs", h.handleCreateRun)
	runRouter.Get("/runs/{runID}", h.handleSnapshot)
	runRouter.Get("/runs/{runID}/kyc", h.handleKycValues)
	runRouter.Post("/runs/{runID}/kyc", h.handleSubmitKyc)
	runRouter.Post("/runs/{runID}/details", h.handleSubmitDetails)
	runRouter.Post("/runs/{runID}/verify", h.handleVerify)
	runRouter.Post("/runs/{runID}/resend", h.handleResend)
	runRouter.Post("/runs/{runID}/back", h.handleBack)
	runRouter.Get("/runs/{runID}/trail", h.handleTrail)

	r.Mount("/", runRouter)
}

type createRunRequest struct {
	Seed *seedPayload `json:"seed"`
}

type seedPayload struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRunRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.WarnContext(ctx, "invalid create run request",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	var seed *draft.SignupSeed
	if req.Seed != nil {
		seed = &draft.SignupSeed{
			Email:        req.Seed.Email,
			Password:     req.Seed.Password,
			ReferralCode: req.Seed.ReferralCode,
		}
	}

	snap, err := h.pipeline.CreateRun(ctx, seed)
	if err != nil {
		h.writeFailure(ctx, w, "create run", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, snap)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.pipeline.Snapshot(chi.URLParam(r, "runID"))
	if err != nil {
		h.writeFailure(r.Context(), w, "snapshot", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleKycValues(w http.ResponseWriter, r *http.Request) {
	values, err := h.pipeline.KycValues(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.writeFailure(r.Context(), w, "kyc values", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, values)
}

func (h *Handler) handleSubmitKyc(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input pipeline.KycInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	snap, err := h.pipeline.SubmitKyc(ctx, chi.URLParam(r, "runID"), input)
	if err != nil {
		h.writeStageFailure(ctx, w, "submit kyc", snap, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleSubmitDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input pipeline.DetailsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	snap, err := h.pipeline.SubmitDetails(ctx, chi.URLParam(r, "runID"), input)
	if err != nil {
		h.writeStageFailure(ctx, w, "submit details", snap, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

type verifyRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	snap, err := h.pipeline.ConfirmOTP(ctx, chi.URLParam(r, "runID"), req.Code)
	if err != nil {
		h.writeStageFailure(ctx, w, "verify", snap, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.pipeline.ResendOTP(ctx, chi.URLParam(r, "runID"))
	if err != nil {
		h.writeStageFailure(ctx, w, "resend", snap, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.pipeline.GoBack(ctx, chi.URLParam(r, "runID"))
	if err != nil {
		h.writeStageFailure(ctx, w, "back", snap, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleTrail(w http.ResponseWriter, r *http.Request) {
	events, err := h.pipeline.Trail(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.writeFailure(r.Context(), w, "trail", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, events)
}

// writeStageFailure reports a stage operation that failed but still has a
// renderable outcome: the snapshot carries the user-facing message, the
// status comes from the error code.
func (h *Handler) writeStageFailure(ctx context.Context, w http.ResponseWriter, op string, snap pipeline.Snapshot, err error) {
	if snap.RunID == "" {
		h.writeFailure(ctx, w, op, err)
		return
	}
	h.logger.WarnContext(ctx, op+" failed",
		"request_id", middleware.GetRequestID(ctx),
		"run_id", snap.RunID,
		"error", err.Error(),
	)
	shared.WriteJSON(w, dErrors.ToHTTPStatus(err), snap)
}

func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.Is(err, dErrors.CodeNotFound) || dErrors.Is(err, dErrors.CodeBadRequest) {
		h.logger.WarnContext(ctx, op+" failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, op+" failed",
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	shared.WriteError(w, err)
}
