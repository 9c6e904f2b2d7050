package compliance

import (
	"sort"
	"sync"

	dErrors "transferguard/pkg/domain-errors"
)

// RuleEntry is one configured rule inside a RuleSet: the rule itself plus
// its evaluation order, mandatory flag, and enabled flag.
type RuleEntry struct {
	Rule      Rule
	Priority  int
	Mandatory bool
	Enabled   bool

	// seq is the insertion sequence, used as the stable tie-break so two
	// entries with equal priority always evaluate in registration order.
	seq int
}

// RuleSet is an ordered, addressable collection of rule entries. Entries are
// never deleted: removal is modelled as disabling, which preserves the
// priority and mandatory configuration for audit history and exact
// restoration on re-enable.
//
// All methods are safe for concurrent use. ActiveRules returns a copy, so a
// caller iterating the active subset is isolated from later mutations.
type RuleSet struct {
	mu      sync.RWMutex
	entries map[string]*RuleEntry
	order   []string
	nextSeq int
}

// NewRuleSet creates an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{entries: make(map[string]*RuleEntry)}
}

// AddRule registers a rule with the given priority and mandatory flag. New
// entries start enabled. Registering a rule whose ID is already present
// fails; rule identifiers are unique within a set.
func (s *RuleSet) AddRule(rule Rule, priority int, mandatory bool) error {
	if rule == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "rule is required")
	}
	id := rule.ID()
	if id == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "rule id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "duplicate rule %q", id)
	}
	s.entries[id] = &RuleEntry{
		Rule:      rule,
		Priority:  priority,
		Mandatory: mandatory,
		Enabled:   true,
		seq:       s.nextSeq,
	}
	s.order = append(s.order, id)
	s.nextSeq++
	return nil
}

// SetEnabled toggles an entry without removing it. Disabling keeps the
// priority and mandatory flags intact so re-enabling restores the exact
// prior behavior.
func (s *RuleSet) SetEnabled(ruleID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ruleID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "rule %q not found", ruleID)
	}
	entry.Enabled = enabled
	return nil
}

// SetPriority updates the evaluation order for an entry. Lower values
// evaluate earlier.
func (s *RuleSet) SetPriority(ruleID string, priority int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ruleID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "rule %q not found", ruleID)
	}
	entry.Priority = priority
	return nil
}

// ActiveRules returns the enabled entries sorted ascending by priority with
// insertion order as the tie-break. The ordering must be deterministic:
// under short-circuit evaluation it decides which rule's reason the end user
// sees, and auditors expect the first blocking reason, not an arbitrary one.
func (s *RuleSet) ActiveRules() []RuleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]RuleEntry, 0, len(s.order))
	for _, id := range s.order {
		if entry := s.entries[id]; entry.Enabled {
			active = append(active, *entry)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority < active[j].Priority
		}
		return active[i].seq < active[j].seq
	})
	return active
}

// Entries returns every entry, enabled or not, in insertion order. Used by
// the admin API to expose configuration history.
func (s *RuleSet) Entries() []RuleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]RuleEntry, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, *s.entries[id])
	}
	return all
}

// Len returns the total number of entries, including disabled ones.
func (s *RuleSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
