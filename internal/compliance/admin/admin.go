// Package admin is the administrative entry point for compliance
// configuration: rule toggling and prioritization, custom rule
// registration, blacklist and lockup management, and attestation upkeep.
// Every mutation emits a compliance audit event synchronously.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"transferguard/internal/audit"
	"transferguard/internal/compliance"
	"transferguard/internal/compliance/rules"
	"transferguard/internal/identity"
	dErrors "transferguard/pkg/domain-errors"
	"transferguard/pkg/domain"
	"transferguard/pkg/requestcontext"
)

// Engine is the slice of the rules engine the admin service needs.
type Engine interface {
	RuleSet() *compliance.RuleSet
	SetMode(ctx context.Context, mode compliance.EvaluationMode) error
	Mode() compliance.EvaluationMode
	ActiveRuleSetVersion() uint64
}

// AttestationWriter is the mutable surface of the static resolver.
type AttestationWriter interface {
	SetAttestation(addr domain.Address, status identity.AttestationStatus)
	RemoveAttestation(addr domain.Address)
}

// SupplyWriter accepts circulating supply reports for the supply cap rule.
type SupplyWriter interface {
	SetTotalSupply(ctx context.Context, asset domain.AssetID, total uint64) error
}

type Service struct {
	engine         Engine
	blacklist      rules.BlacklistStore
	lockups        rules.LockupStore
	attestations   AttestationWriter
	supply         SupplyWriter
	auditPublisher *audit.Publisher
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithAttestationWriter(writer AttestationWriter) Option {
	return func(s *Service) {
		s.attestations = writer
	}
}

func WithSupplyWriter(writer SupplyWriter) Option {
	return func(s *Service) {
		s.supply = writer
	}
}

func New(engine Engine, blacklist rules.BlacklistStore, lockups rules.LockupStore, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if blacklist == nil {
		return nil, errors.New("blacklist store is required")
	}
	if lockups == nil {
		return nil, errors.New("lockup store is required")
	}

	svc := &Service{
		engine:    engine,
		blacklist: blacklist,
		lockups:   lockups,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// AddCELRule compiles and registers a custom predicate on the active rule
// set.
func (s *Service) AddCELRule(ctx context.Context, id, expression, reason string, priority int, mandatory bool) error {
	rule, err := rules.NewCEL(id, expression, reason)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid rule expression")
	}
	if err := s.engine.RuleSet().AddRule(rule, priority, mandatory); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "custom rule added", "rule_id", id, "priority", priority)
	s.emit(ctx, audit.Event{Type: audit.EventRuleAdded, RuleID: id, Detail: expression})
	return nil
}

// SetRuleEnabled toggles a rule without losing its configuration.
func (s *Service) SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error {
	if err := s.engine.RuleSet().SetEnabled(ruleID, enabled); err != nil {
		return err
	}

	eventType := audit.EventRuleDisabled
	if enabled {
		eventType = audit.EventRuleEnabled
	}
	s.logger.InfoContext(ctx, "rule toggled", "rule_id", ruleID, "enabled", enabled)
	s.emit(ctx, audit.Event{Type: eventType, RuleID: ruleID})
	return nil
}

// SetRulePriority reorders a rule within the active set.
func (s *Service) SetRulePriority(ctx context.Context, ruleID string, priority int) error {
	if err := s.engine.RuleSet().SetPriority(ruleID, priority); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "rule reprioritized", "rule_id", ruleID, "priority", priority)
	s.emit(ctx, audit.Event{Type: audit.EventRuleReordered, RuleID: ruleID})
	return nil
}

// SetEvaluationMode changes how rule outcomes combine.
func (s *Service) SetEvaluationMode(ctx context.Context, mode compliance.EvaluationMode) error {
	return s.engine.SetMode(ctx, mode)
}

// RuleEntries exposes the full configuration, disabled entries included.
func (s *Service) RuleEntries() []compliance.RuleEntry {
	return s.engine.RuleSet().Entries()
}

// AddBlacklistEntry blocks an address, permanently when expiresAt is zero.
func (s *Service) AddBlacklistEntry(ctx context.Context, addr domain.Address, reason string, expiresAt time.Time) error {
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	entry := rules.BlacklistEntry{
		Address:   addr,
		Reason:    reason,
		ExpiresAt: expiresAt,
		CreatedAt: requestcontext.Now(ctx),
		CreatedBy: requestcontext.AdminSubject(ctx),
	}
	if err := s.blacklist.Add(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add blacklist entry")
	}

	s.logger.InfoContext(ctx, "blacklist entry added", "address", addr, "expires_at", expiresAt)
	s.emit(ctx, audit.Event{Type: audit.EventBlacklistAdded, Address: addr, Reason: reason})
	return nil
}

// RemoveBlacklistEntry unblocks an address ahead of any expiry.
func (s *Service) RemoveBlacklistEntry(ctx context.Context, addr domain.Address) error {
	if err := s.blacklist.Remove(ctx, addr); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove blacklist entry")
	}

	s.logger.InfoContext(ctx, "blacklist entry removed", "address", addr)
	s.emit(ctx, audit.Event{Type: audit.EventBlacklistRemoved, Address: addr})
	return nil
}

// ListBlacklist returns all entries as stored, including expired ones.
func (s *Service) ListBlacklist(ctx context.Context) ([]rules.BlacklistEntry, error) {
	entries, err := s.blacklist.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blacklist entries")
	}
	return entries, nil
}

// SetLockup installs or replaces a vesting restriction for an address.
func (s *Service) SetLockup(ctx context.Context, addr domain.Address, lockedUntil time.Time, lockedAmount uint64, reason string) error {
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	record := rules.LockupRecord{
		Address:      addr,
		LockedUntil:  lockedUntil,
		LockedAmount: lockedAmount,
		Reason:       reason,
		CreatedAt:    requestcontext.Now(ctx),
		CreatedBy:    requestcontext.AdminSubject(ctx),
	}
	if err := s.lockups.Set(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set lockup record")
	}

	s.logger.InfoContext(ctx, "lockup record set",
		"address", addr, "locked_until", lockedUntil, "locked_amount", lockedAmount)
	s.emit(ctx, audit.Event{Type: audit.EventLockupSet, Address: addr, Reason: reason})
	return nil
}

// RemoveLockup clears an address's restriction before its natural expiry.
func (s *Service) RemoveLockup(ctx context.Context, addr domain.Address) error {
	if err := s.lockups.Remove(ctx, addr); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove lockup record")
	}

	s.logger.InfoContext(ctx, "lockup record removed", "address", addr)
	s.emit(ctx, audit.Event{Type: audit.EventLockupRemoved, Address: addr})
	return nil
}

// SetAttestation registers attestation data on the static resolver.
func (s *Service) SetAttestation(ctx context.Context, addr domain.Address, status identity.AttestationStatus) error {
	if s.attestations == nil {
		return dErrors.New(dErrors.CodeFailedPrecondition, "attestation management is not enabled")
	}
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	s.attestations.SetAttestation(addr, status)

	s.logger.InfoContext(ctx, "attestation set", "address", addr, "tier", status.Tier)
	s.emit(ctx, audit.Event{Type: audit.EventAttestationSet, Address: addr, Detail: status.Tier.String()})
	return nil
}

// RemoveAttestation deletes attestation data from the static resolver.
func (s *Service) RemoveAttestation(ctx context.Context, addr domain.Address) error {
	if s.attestations == nil {
		return dErrors.New(dErrors.CodeFailedPrecondition, "attestation management is not enabled")
	}
	s.attestations.RemoveAttestation(addr)

	s.logger.InfoContext(ctx, "attestation removed", "address", addr)
	s.emit(ctx, audit.Event{Type: audit.EventAttestationRemoved, Address: addr})
	return nil
}

// ReportSupply records the circulating supply figure the supply cap rule
// checks mints against.
func (s *Service) ReportSupply(ctx context.Context, asset domain.AssetID, total uint64) error {
	if s.supply == nil {
		return dErrors.New(dErrors.CodeFailedPrecondition, "supply reporting is not enabled")
	}
	if asset == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "asset is required")
	}
	if err := s.supply.SetTotalSupply(ctx, asset, total); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record supply")
	}

	s.logger.InfoContext(ctx, "supply reported", "asset", asset, "total", total)
	s.emit(ctx, audit.Event{Type: audit.EventSupplyReported, Asset: asset})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.Category = audit.CategoryCompliance
	event.Actor = requestcontext.AdminSubject(ctx)
	s.auditPublisher.Emit(ctx, event)
}
