package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/performance"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// ShieldService is what the handlers need from the engine
type ShieldService interface {
	Analyze(ctx context.Context, sig contracts.Signal, snap *contracts.MarketSnapshot, userID string) *contracts.ShieldResult
	CachedResult(ctx context.Context, signalID string) (*contracts.ShieldResult, error)
	Insight(ctx context.Context, signalID string) (string, error)
	LogOutcome(ctx context.Context, o contracts.Outcome) (bool, error)
	PerformanceReport(ctx context.Context, days int) (*contracts.PerformanceReport, error)
	UserStats(ctx context.Context, userID string, days int) (*contracts.UserStats, error)
	Improvements(ctx context.Context, days int) (*contracts.ImprovementReport, error)
}

// ShieldHandler handles shield API endpoints
// ⭐ SSOT: Shield API 핸들러는 이 구조체에서만
type ShieldHandler struct {
	engine ShieldService
	logger *logger.Logger
}

// NewShieldHandler creates a new shield handler
func NewShieldHandler(engine ShieldService, log *logger.Logger) *ShieldHandler {
	return &ShieldHandler{
		engine: engine,
		logger: log.Component("api"),
	}
}

// AnalyzeRequest is the body of POST /api/shield/analyze
type AnalyzeRequest struct {
	Signal   contracts.Signal          `json:"signal"`
	Snapshot *contracts.MarketSnapshot `json:"snapshot"`
	UserID   string                    `json:"user_id" validate:"max=64"`
}

// Analyze scores a signal
// POST /api/shield/analyze
func (h *ShieldHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if errs := decodeAndValidate(w, r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	result := h.engine.Analyze(r.Context(), req.Signal, req.Snapshot, req.UserID)
	respondJSON(w, http.StatusOK, result)
}

// GetResult returns a previously scored result
// GET /api/shield/{signal_id}
func (h *ShieldHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	signalID := mux.Vars(r)["signal_id"]

	result, err := h.engine.CachedResult(r.Context(), signalID)
	if err != nil {
		h.respondLookupError(w, err, signalID)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetInsight returns the rendered insight text of a scored result
// GET /api/shield/{signal_id}/insight
func (h *ShieldHandler) GetInsight(w http.ResponseWriter, r *http.Request) {
	signalID := mux.Vars(r)["signal_id"]

	text, err := h.engine.Insight(r.Context(), signalID)
	if err != nil {
		h.respondLookupError(w, err, signalID)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"signal_id": signalID,
		"insight":   text,
	})
}

func (h *ShieldHandler) respondLookupError(w http.ResponseWriter, err error, signalID string) {
	if errors.Is(err, performance.ErrNotFound) {
		respondError(w, http.StatusNotFound, "signal not found")
		return
	}
	h.logger.WithError(err).WithField("signal_id", signalID).Error("Failed to load shield result")
	respondError(w, http.StatusInternalServerError, "Failed to retrieve shield result")
}

// RecordOutcome stores a trade outcome
// POST /api/outcomes
func (h *ShieldHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var o contracts.Outcome
	if errs := decodeAndValidate(w, r, &o); errs != nil {
		respondValidation(w, errs)
		return
	}
	// orphan is decided by the store, never by the caller
	o.Orphan = false

	orphan, err := h.engine.LogOutcome(r.Context(), o)
	if err != nil {
		h.logger.WithError(err).WithField("signal_id", o.SignalID).Error("Failed to record outcome")
		respondError(w, http.StatusInternalServerError, "Failed to record outcome")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"signal_id": o.SignalID,
		"orphan":    orphan,
	})
}

// GetPerformance returns the performance report
// GET /api/performance?days=30
func (h *ShieldHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.engine.PerformanceReport(r.Context(), days)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build performance report")
		respondError(w, http.StatusInternalServerError, "Failed to build performance report")
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// GetImprovements returns improvement opportunities
// GET /api/performance/improvements?days=30
func (h *ShieldHandler) GetImprovements(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.engine.Improvements(r.Context(), days)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build improvements")
		respondError(w, http.StatusInternalServerError, "Failed to build improvements")
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// GetUserStats returns one user's profile
// GET /api/users/{user_id}/stats?days=30
func (h *ShieldHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	days, err := daysParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.engine.UserStats(r.Context(), userID, days)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to build user stats")
		respondError(w, http.StatusInternalServerError, "Failed to build user stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
