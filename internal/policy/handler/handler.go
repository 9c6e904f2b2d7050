// Package handler exposes the policy registry lifecycle endpoints. All of
// them mutate governance state and are expected to be mounted behind admin
// authentication.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"transferguard/internal/policy"
	dErrors "transferguard/pkg/domain-errors"
	"transferguard/pkg/platform/httputil"
)

// Registry is the slice of the policy registry the handler needs.
type Registry interface {
	RegisterPolicy(ctx context.Context, configRef, description string) (*policy.Policy, error)
	StagePolicy(ctx context.Context, version int) (*policy.Policy, error)
	ActivatePolicy(ctx context.Context, version int) (*policy.Policy, error)
	CancelStaging(ctx context.Context, version int) (*policy.Policy, error)
	SetActivationDelay(ctx context.Context, version int, delay time.Duration) (*policy.Policy, error)
	GetActiveVersion(ctx context.Context) (int, error)
	GetPolicyMetadata(ctx context.Context, version int) (*policy.Policy, error)
	ListPolicies(ctx context.Context) ([]*policy.Policy, error)
}

// Handler wires policy lifecycle endpoints to the registry.
type Handler struct {
	registry Registry
	logger   *slog.Logger
}

func New(registry Registry, logger *slog.Logger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

// Register mounts policy endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/policies", h.HandleList)
	r.Post("/policies", h.HandleRegister)
	r.Get("/policies/active", h.HandleGetActive)
	r.Get("/policies/{version}", h.HandleGet)
	r.Post("/policies/{version}/stage", h.HandleStage)
	r.Post("/policies/{version}/activate", h.HandleActivate)
	r.Post("/policies/{version}/cancel-staging", h.HandleCancelStaging)
	r.Put("/policies/{version}/activation-delay", h.HandleSetActivationDelay)
}

// RegisterRequest is the body for POST /policies.
type RegisterRequest struct {
	ConfigRef   string `json:"config_ref"`
	Description string `json:"description,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	r.ConfigRef = strings.TrimSpace(r.ConfigRef)
	if r.ConfigRef == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "config_ref is required")
	}
	return nil
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.registry.RegisterPolicy(r.Context(), req.ConfigRef, req.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromPolicy(p))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	policies, err := h.registry.ListPolicies(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*PolicyResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, FromPolicy(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGetActive(w http.ResponseWriter, r *http.Request) {
	version, err := h.registry.GetActiveVersion(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if version == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no active policy"))
		return
	}
	p, err := h.registry.GetPolicyMetadata(r.Context(), version)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPolicy(p))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	version, ok := h.version(w, r)
	if !ok {
		return
	}
	p, err := h.registry.GetPolicyMetadata(r.Context(), version)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPolicy(p))
}

func (h *Handler) HandleStage(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.registry.StagePolicy)
}

func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.registry.ActivatePolicy)
}

func (h *Handler) HandleCancelStaging(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.registry.CancelStaging)
}

// SetActivationDelayRequest is the body for
// PUT /policies/{version}/activation-delay. The delay is in seconds.
type SetActivationDelayRequest struct {
	DelaySeconds int64 `json:"delay_seconds"`
}

func (h *Handler) HandleSetActivationDelay(w http.ResponseWriter, r *http.Request) {
	version, ok := h.version(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[SetActivationDelayRequest](w, r, h.logger)
	if !ok {
		return
	}

	p, err := h.registry.SetActivationDelay(r.Context(), version, time.Duration(req.DelaySeconds)*time.Second)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPolicy(p))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, int) (*policy.Policy, error)) {
	version, ok := h.version(w, r)
	if !ok {
		return
	}
	p, err := fn(r.Context(), version)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPolicy(p))
}

func (h *Handler) version(w http.ResponseWriter, r *http.Request) (int, bool) {
	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || version < 1 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "version must be a positive integer"))
		return 0, false
	}
	return version, true
}
