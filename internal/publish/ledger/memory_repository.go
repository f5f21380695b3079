package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepository stores publish records in-memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository constructs an in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]Record),
	}
}

// Get returns the record stored under key or ErrRecordNotFound.
func (r *MemoryRepository) Get(_ context.Context, key string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[key]
	if !ok {
		return Record{}, notFound(key)
	}
	return cloneRecord(record), nil
}

// Upsert stores record, bumping its version when it already exists.
func (r *MemoryRepository) Upsert(_ context.Context, record Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing *Record
	if current, ok := r.records[record.Key]; ok {
		existing = &current
	}
	stored := prepare(record, existing)
	r.records[stored.Key] = stored
	return cloneRecord(stored), nil
}

// Delete removes the record stored under key.
func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[key]; !ok {
		return notFound(key)
	}
	delete(r.records, key)
	return nil
}

// List returns the records of space sorted by key. An empty space lists all.
func (r *MemoryRepository) List(_ context.Context, space string) ([]Record, error) {
	space = strings.ToLower(strings.TrimSpace(space))

	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		if space != "" && record.Space != space {
			continue
		}
		out = append(out, cloneRecord(record))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func cloneRecord(record Record) Record {
	record.Attachments = append([]string(nil), record.Attachments...)
	return record
}
