package users

import (
	"context"
	"sync"
)

// MemoryStore keeps records in a map. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore(seed ...Record) *MemoryStore {
	s := &MemoryStore{records: make(map[string]Record, len(seed))}
	for _, r := range seed {
		s.records[r.ID] = r
	}
	return s
}

// Put inserts or replaces a record.
func (s *MemoryStore) Put(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r
}

func (s *MemoryStore) FindOne(_ context.Context, f Filter) (*Record, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[f.ID]
	if !ok || (f.Email != "" && r.Email != f.Email) {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) Update(_ context.Context, f Filter, p Patch) error {
	if err := f.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[f.ID]
	if !ok || (f.Email != "" && r.Email != f.Email) {
		return ErrNoRowsUpdated
	}
	p.apply(&r)
	s.records[f.ID] = r
	return nil
}

func (s *MemoryStore) RepairPlanType(_ context.Context, userID, planType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[userID]
	if !ok {
		return ErrRepairRejected
	}
	r.PlanType = planType
	s.records[userID] = r
	return nil
}
