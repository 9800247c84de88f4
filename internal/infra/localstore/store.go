// Package localstore keeps the node-local copy of every submitted lead as one JSON array
// under a fixed key. It is the only sink a submission must reach.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

// LeadsKey is the storage key of the lead array.
const LeadsKey = "nesthome_leads"

var ErrKeyNotFound = errors.New("key not found")

// KV is a byte slot store. Get returns ErrKeyNotFound for an absent key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LeadStore serialises writers within one process only. Two processes sharing a backend
// can still lose an append.
type LeadStore struct {
	kv     KV
	key    string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewLeadStore(kv KV) *LeadStore {
	return &LeadStore{kv: kv, key: LeadsKey, logger: slog.Default()}
}

// Append puts the lead at the head of the array. Ids are unique within the slot.
func (s *LeadStore) Append(ctx context.Context, lead entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads := s.read(ctx)
	for _, l := range leads {
		if l.ID == lead.ID {
			return fmt.Errorf("append %s: %w", lead.ID, entity.ErrDuplicateLeadID)
		}
	}
	leads = append([]entity.Lead{lead}, leads...)
	return s.write(ctx, leads)
}

// ReadAll never fails: an absent or unreadable slot is an empty list.
func (s *LeadStore) ReadAll(ctx context.Context) []entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

func (s *LeadStore) Update(ctx context.Context, id string, fn func(*entity.Lead)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads := s.read(ctx)
	for i := range leads {
		if leads[i].ID == id || (leads[i].RemoteKey != "" && leads[i].RemoteKey == id) {
			fn(&leads[i])
			return true, s.write(ctx, leads)
		}
	}
	return false, nil
}

func (s *LeadStore) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads := s.read(ctx)
	for i := range leads {
		if leads[i].ID == id || (leads[i].RemoteKey != "" && leads[i].RemoteKey == id) {
			leads = append(leads[:i], leads[i+1:]...)
			return true, s.write(ctx, leads)
		}
	}
	return false, nil
}

func (s *LeadStore) read(ctx context.Context) []entity.Lead {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Warn("local lead slot unreadable", "key", s.key, "error", err)
		}
		return []entity.Lead{}
	}

	var leads []entity.Lead
	if err := json.Unmarshal(raw, &leads); err != nil {
		s.logger.Warn("local lead slot is not a lead array", "key", s.key, "error", err)
		return []entity.Lead{}
	}
	if leads == nil {
		return []entity.Lead{}
	}
	return leads
}

func (s *LeadStore) write(ctx context.Context, leads []entity.Lead) error {
	raw, err := json.Marshal(leads)
	if err != nil {
		return fmt.Errorf("encode leads: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}
