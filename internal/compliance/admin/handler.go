package admin

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"transferguard/internal/compliance"
	"transferguard/internal/identity"
	dErrors "transferguard/pkg/domain-errors"
	"transferguard/pkg/domain"
	"transferguard/pkg/platform/httputil"
)

// Handler exposes the administrative compliance endpoints. It is expected to
// be mounted behind admin authentication.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/compliance/rules", h.HandleListRules)
	r.Post("/compliance/rules", h.HandleAddRule)
	r.Patch("/compliance/rules/{ruleID}", h.HandleUpdateRule)
	r.Put("/compliance/mode", h.HandleSetMode)

	r.Get("/compliance/blacklist", h.HandleListBlacklist)
	r.Post("/compliance/blacklist", h.HandleAddBlacklistEntry)
	r.Delete("/compliance/blacklist/{address}", h.HandleRemoveBlacklistEntry)

	r.Put("/compliance/lockups/{address}", h.HandleSetLockup)
	r.Delete("/compliance/lockups/{address}", h.HandleRemoveLockup)

	r.Put("/compliance/attestations/{address}", h.HandleSetAttestation)
	r.Delete("/compliance/attestations/{address}", h.HandleRemoveAttestation)

	r.Put("/compliance/supply/{asset}", h.HandleReportSupply)
}

// RuleEntryResponse describes one configured rule, enabled or not.
type RuleEntryResponse struct {
	RuleID    string `json:"rule_id"`
	Priority  int    `json:"priority"`
	Mandatory bool   `json:"mandatory"`
	Enabled   bool   `json:"enabled"`
}

func (h *Handler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	entries := h.service.RuleEntries()
	out := make([]RuleEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, RuleEntryResponse{
			RuleID:    e.Rule.ID(),
			Priority:  e.Priority,
			Mandatory: e.Mandatory,
			Enabled:   e.Enabled,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// AddRuleRequest is the body for POST /compliance/rules. The expression is a
// CEL predicate over the operation; a false result fails the rule with the
// given reason.
type AddRuleRequest struct {
	RuleID     string `json:"rule_id"`
	Expression string `json:"expression"`
	Reason     string `json:"reason"`
	Priority   int    `json:"priority"`
	Mandatory  bool   `json:"mandatory"`
}

func (r *AddRuleRequest) Validate() error {
	r.RuleID = strings.TrimSpace(r.RuleID)
	if r.RuleID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "rule_id is required")
	}
	if strings.TrimSpace(r.Expression) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "expression is required")
	}
	return nil
}

func (h *Handler) HandleAddRule(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[AddRuleRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.AddCELRule(r.Context(), req.RuleID, req.Expression, req.Reason, req.Priority, req.Mandatory); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, nil)
}

// UpdateRuleRequest is the body for PATCH /compliance/rules/{ruleID}. Nil
// fields are left unchanged.
type UpdateRuleRequest struct {
	Enabled  *bool `json:"enabled,omitempty"`
	Priority *int  `json:"priority,omitempty"`
}

func (h *Handler) HandleUpdateRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleID")

	req, ok := httputil.Decode[UpdateRuleRequest](w, r, h.logger)
	if !ok {
		return
	}
	if req.Enabled == nil && req.Priority == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "at least one of enabled or priority is required"))
		return
	}

	if req.Priority != nil {
		if err := h.service.SetRulePriority(r.Context(), ruleID, *req.Priority); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if req.Enabled != nil {
		if err := h.service.SetRuleEnabled(r.Context(), ruleID, *req.Enabled); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// SetModeRequest is the body for PUT /compliance/mode.
type SetModeRequest struct {
	Mode string `json:"mode"`
}

func (h *Handler) HandleSetMode(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[SetModeRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.SetEvaluationMode(r.Context(), compliance.EvaluationMode(req.Mode)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) HandleListBlacklist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListBlacklist(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// AddBlacklistEntryRequest is the body for POST /compliance/blacklist. A zero
// expires_at makes the entry permanent.
type AddBlacklistEntryRequest struct {
	Address   string    `json:"address"`
	Reason    string    `json:"reason"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (h *Handler) HandleAddBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[AddBlacklistEntryRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.AddBlacklistEntry(r.Context(), domain.Address(strings.TrimSpace(req.Address)), req.Reason, req.ExpiresAt); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, nil)
}

func (h *Handler) HandleRemoveBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	addr := domain.Address(chi.URLParam(r, "address"))
	if err := h.service.RemoveBlacklistEntry(r.Context(), addr); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// SetLockupRequest is the body for PUT /compliance/lockups/{address}. A
// locked_amount of zero blocks the full balance.
type SetLockupRequest struct {
	LockedUntil  time.Time `json:"locked_until"`
	LockedAmount uint64    `json:"locked_amount"`
	Reason       string    `json:"reason"`
}

func (r *SetLockupRequest) Validate() error {
	if r.LockedUntil.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "locked_until is required")
	}
	return nil
}

func (h *Handler) HandleSetLockup(w http.ResponseWriter, r *http.Request) {
	addr := domain.Address(chi.URLParam(r, "address"))

	req, ok := httputil.Decode[SetLockupRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.SetLockup(r.Context(), addr, req.LockedUntil, req.LockedAmount, req.Reason); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) HandleRemoveLockup(w http.ResponseWriter, r *http.Request) {
	addr := domain.Address(chi.URLParam(r, "address"))
	if err := h.service.RemoveLockup(r.Context(), addr); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// SetAttestationRequest is the body for PUT /compliance/attestations/{address}.
type SetAttestationRequest struct {
	Tier         string    `json:"tier"`
	Valid        bool      `json:"valid"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	Jurisdiction string    `json:"jurisdiction,omitempty"`
}

func (h *Handler) HandleSetAttestation(w http.ResponseWriter, r *http.Request) {
	addr := domain.Address(chi.URLParam(r, "address"))

	req, ok := httputil.Decode[SetAttestationRequest](w, r, h.logger)
	if !ok {
		return
	}
	tier, err := identity.ParseTier(strings.TrimSpace(req.Tier))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid tier"))
		return
	}

	status := identity.AttestationStatus{
		Tier:         tier,
		IsValid:      req.Valid,
		ExpiresAt:    req.ExpiresAt,
		Jurisdiction: strings.ToUpper(strings.TrimSpace(req.Jurisdiction)),
	}
	if err := h.service.SetAttestation(r.Context(), addr, status); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

// ReportSupplyRequest is the body for PUT /compliance/supply/{asset}.
type ReportSupplyRequest struct {
	TotalSupply uint64 `json:"total_supply"`
}

func (h *Handler) HandleReportSupply(w http.ResponseWriter, r *http.Request) {
	asset := domain.AssetID(chi.URLParam(r, "asset"))

	req, ok := httputil.Decode[ReportSupplyRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.ReportSupply(r.Context(), asset, req.TotalSupply); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) HandleRemoveAttestation(w http.ResponseWriter, r *http.Request) {
	addr := domain.Address(chi.URLParam(r, "address"))
	if err := h.service.RemoveAttestation(r.Context(), addr); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}
