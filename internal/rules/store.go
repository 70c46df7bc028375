// Package rules holds the in-memory alert rule set the evaluator iterates on
// every tick. The store is the sole owner of rule values; callers receive
// copies.
package rules

import (
	"errors"
	"sync"
	"time"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

// ErrDuplicateRule is returned when adding a rule whose id is already
// registered.
var ErrDuplicateRule = errors.New("rule id already exists")

// Store keeps alert rules in insertion order.
type Store struct {
	mu    sync.RWMutex
	rules []*models.AlertRule
	byID  map[string]*models.AlertRule
}

// NewStore creates an empty rule store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*models.AlertRule)}
}

// List returns a copy of all rules in insertion order.
func (s *Store) List() []models.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AlertRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, cloneRule(r))
	}
	return out
}

// Get returns the rule with the given id.
func (s *Store) Get(id string) (models.AlertRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return models.AlertRule{}, false
	}
	return cloneRule(r), true
}

// Add appends a rule. Duplicate ids are rejected; the surrounding product
// historically allowed them, which made rules unaddressable by id, so the
// store enforces uniqueness instead.
func (s *Store) Add(rule models.AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[rule.ID]; exists {
		return ErrDuplicateRule
	}
	stored := cloneRule(&rule)
	s.rules = append(s.rules, &stored)
	s.byID[rule.ID] = &stored
	return nil
}

// Update merges the supplied fields into the stored rule. Unknown ids are a
// silent no-op so the operation stays idempotent for callers. The updated
// rule and whether it existed are returned.
func (s *Store) Update(id string, req models.UpdateRuleRequest) (models.AlertRule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return models.AlertRule{}, false
	}
	if req.Name != nil {
		r.Name = *req.Name
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.Metric != nil {
		r.Metric = *req.Metric
	}
	if req.Condition != nil {
		r.Condition = *req.Condition
	}
	if req.Threshold != nil {
		r.Threshold = *req.Threshold
	}
	if req.Severity != nil {
		r.Severity = *req.Severity
	}
	if req.Enabled != nil {
		r.Enabled = *req.Enabled
	}
	if req.CooldownMinutes != nil {
		r.CooldownMinutes = *req.CooldownMinutes
	}
	if req.Channels != nil {
		r.Channels = append([]models.AlertChannelType(nil), (*req.Channels)...)
	}
	if req.Recipients != nil {
		r.Recipients = append([]string(nil), (*req.Recipients)...)
	}
	r.UpdatedAt = time.Now().UTC()
	return cloneRule(r), true
}

// Set replaces the stored rule with the same id in place, keeping its
// position. Unknown ids are a no-op. Callers use it to roll back a merge
// whose persistence failed.
func (s *Store) Set(rule models.AlertRule) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[rule.ID]
	if !ok {
		return false
	}
	*r = cloneRule(&rule)
	return true
}

// Remove deletes the rule if present; unknown ids are a silent no-op. The
// return value reports whether a rule was removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, r := range s.rules {
		if r.ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			break
		}
	}
	return true
}

// Replace swaps the full rule set, preserving the given order. Used when
// loading persisted rules at startup.
func (s *Store) Replace(rules []models.AlertRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make([]*models.AlertRule, 0, len(rules))
	s.byID = make(map[string]*models.AlertRule, len(rules))
	for i := range rules {
		stored := cloneRule(&rules[i])
		s.rules = append(s.rules, &stored)
		s.byID[stored.ID] = &stored
	}
}

func cloneRule(r *models.AlertRule) models.AlertRule {
	out := *r
	out.Channels = append([]models.AlertChannelType(nil), r.Channels...)
	if r.Recipients != nil {
		out.Recipients = append([]string(nil), r.Recipients...)
	}
	return out
}
