// Package handler exposes the compliance evaluation endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"transferguard/internal/audit"
	"transferguard/internal/compliance"
	"transferguard/internal/compliance/metrics"
	dErrors "transferguard/pkg/domain-errors"
	"transferguard/pkg/domain"
	"transferguard/pkg/platform/httputil"
	"transferguard/pkg/requestcontext"
)

// Engine evaluates operations against the active rule set.
type Engine interface {
	Evaluate(ctx context.Context, op compliance.Operation) compliance.EvaluationResult
	Mode() compliance.EvaluationMode
	ActiveRuleSetVersion() uint64
}

// TransferRecorder commits an executed transfer into the velocity window.
type TransferRecorder interface {
	RecordTransfer(ctx context.Context, actor domain.Address, amount uint64) error
}

// Handler wires compliance endpoints to the rules engine.
type Handler struct {
	engine         Engine
	recorder       TransferRecorder
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher *audit.Publisher
}

// New constructs a compliance handler with its dependencies. The recorder and
// audit publisher are optional; without a recorder the record endpoint
// reports a precondition failure.
func New(engine Engine, recorder TransferRecorder, logger *slog.Logger, metrics *metrics.Metrics, auditPublisher *audit.Publisher) *Handler {
	return &Handler{
		engine:         engine,
		recorder:       recorder,
		logger:         logger,
		metrics:        metrics,
		auditPublisher: auditPublisher,
	}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/evaluate", h.HandleEvaluate)
	r.Post("/compliance/transfers/record", h.HandleRecordTransfer)
}

// HandleEvaluate handles POST /compliance/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.Decode[EvaluateRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result := h.engine.Evaluate(ctx, req.ToOperation(requestcontext.Now(ctx)))

	h.logger.InfoContext(ctx, "operation evaluated",
		"request_id", requestID,
		"operation_type", req.OperationType,
		"actor", req.Actor,
		"passed", result.Passed,
		"failed_rule", result.FailedRule,
		"evaluated_rules", result.EvaluatedRules,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result, h.engine.Mode(), h.engine.ActiveRuleSetVersion()))
}

// HandleRecordTransfer handles POST /compliance/transfers/record requests.
// Callers invoke it after the evaluated operation actually executed; the
// velocity window only advances on this explicit commit.
func (h *Handler) HandleRecordTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if h.recorder == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeFailedPrecondition, "velocity tracking is not enabled"))
		return
	}

	req, ok := httputil.Decode[RecordTransferRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.recorder.RecordTransfer(ctx, req.ActorAddress(), req.Amount); err != nil {
		h.logger.ErrorContext(ctx, "transfer record failed",
			"request_id", requestID,
			"actor", req.Actor,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transfer"))
		return
	}

	if h.metrics != nil {
		h.metrics.TransfersCommitted.Inc()
	}
	if h.auditPublisher != nil {
		h.auditPublisher.Emit(ctx, audit.Event{
			Category: audit.CategoryOperations,
			Type:     audit.EventTransferRecorded,
			Address:  req.ActorAddress(),
		})
	}

	h.logger.InfoContext(ctx, "transfer recorded",
		"request_id", requestID,
		"actor", req.Actor,
		"amount", req.Amount,
	)

	httputil.WriteJSON(w, http.StatusNoContent, nil)
}
