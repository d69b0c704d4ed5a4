// Package inventorytest provides in-memory collaborators for pipeline tests.
package inventorytest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"inventoryapi/internal/inventory"
)

// MemStore is a map-backed inventory.Store. Setting Err makes every call fail
// with it wrapped in ErrStoreUnavailable.
type MemStore struct {
	mu      sync.Mutex
	records map[string]inventory.Record
	Err     error
}

func NewMemStore(records ...inventory.Record) *MemStore {
	s := &MemStore{records: make(map[string]inventory.Record)}
	for _, r := range records {
		s.records[r.SKU] = r
	}
	return s
}

func (s *MemStore) GetBySKU(ctx context.Context, sku string) (inventory.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return inventory.Record{}, fmt.Errorf("%w: %v", inventory.ErrStoreUnavailable, s.Err)
	}
	rec, ok := s.records[sku]
	if !ok {
		return inventory.Record{}, inventory.ErrNotFound
	}
	return rec, nil
}

func (s *MemStore) FindByTitle(ctx context.Context, title string) ([]inventory.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, fmt.Errorf("%w: %v", inventory.ErrStoreUnavailable, s.Err)
	}
	var out []inventory.Record
	for _, r := range s.records {
		if r.Title == title {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (s *MemStore) Put(ctx context.Context, rec inventory.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return fmt.Errorf("%w: %v", inventory.ErrStoreUnavailable, s.Err)
	}
	s.records[rec.SKU] = rec
	return nil
}

func (s *MemStore) Delete(ctx context.Context, key string) (inventory.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return inventory.Record{}, fmt.Errorf("%w: %v", inventory.ErrStoreUnavailable, s.Err)
	}
	delete(s.records, key)
	return inventory.Record{SKU: key}, nil
}

func (s *MemStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Err
}

// Len reports how many records are stored.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Publisher records publish calls and answers with Outcome.
type Publisher struct {
	mu        sync.Mutex
	Outcome   inventory.PublishOutcome
	Published []inventory.Record
	Topics    []string
}

func (p *Publisher) Publish(ctx context.Context, rec inventory.Record, topic string) inventory.PublishOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, rec)
	p.Topics = append(p.Topics, topic)
	return p.Outcome
}

// Calls reports how many times Publish ran.
func (p *Publisher) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Published)
}

// Recorder counts metric callbacks.
type Recorder struct {
	mu          sync.Mutex
	Outcomes    map[string]int
	StoreErrors map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{Outcomes: map[string]int{}, StoreErrors: map[string]int{}}
}

func (r *Recorder) PublishOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outcomes[outcome]++
}

func (r *Recorder) StoreError(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StoreErrors[operation]++
}
