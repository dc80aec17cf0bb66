package script

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/barnabasJ/ash-ai/internal/starlark"
)

// MemoryStore holds resource records in memory, partitioned by resource
// and tenant. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	records map[partition]map[string]map[string]any
	order   map[partition][]string
}

type partition struct {
	resource string
	tenant   string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[partition]map[string]map[string]any),
		order:   make(map[partition][]string),
	}
}

// Scope returns the records of one resource as seen by one tenant.
func (s *MemoryStore) Scope(resource, tenant string) starlark.RecordStore {
	return &scopedStore{store: s, part: partition{resource: resource, tenant: tenant}}
}

type scopedStore struct {
	store *MemoryStore
	part  partition
}

var _ starlark.RecordStore = (*scopedStore)(nil)

func (s *scopedStore) List() []map[string]any {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	ids := s.store.order[s.part]
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyRecord(s.store.records[s.part][id]))
	}
	return out
}

func (s *scopedStore) Get(id string) (map[string]any, bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, ok := s.store.records[s.part][id]
	if !ok {
		return nil, false
	}
	return copyRecord(record), true
}

// Insert stores record under its "id" field, generating a UUID when the
// record has none.
func (s *scopedStore) Insert(record map[string]any) map[string]any {
	record = copyRecord(record)
	id, _ := record["id"].(string)
	if id == "" {
		id = uuid.NewString()
		record["id"] = id
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if s.store.records[s.part] == nil {
		s.store.records[s.part] = make(map[string]map[string]any)
	}
	if _, exists := s.store.records[s.part][id]; !exists {
		s.store.order[s.part] = append(s.store.order[s.part], id)
	}
	s.store.records[s.part][id] = record
	return copyRecord(record)
}

func (s *scopedStore) Update(id string, changes map[string]any) (map[string]any, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, ok := s.store.records[s.part][id]
	if !ok {
		return nil, fmt.Errorf("%s %s not found", s.part.resource, id)
	}
	for k, v := range changes {
		if k == "id" {
			continue
		}
		record[k] = v
	}
	return copyRecord(record), nil
}

func (s *scopedStore) Delete(id string) (map[string]any, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, ok := s.store.records[s.part][id]
	if !ok {
		return nil, fmt.Errorf("%s %s not found", s.part.resource, id)
	}
	delete(s.store.records[s.part], id)

	ids := s.store.order[s.part]
	for i, existing := range ids {
		if existing == id {
			s.store.order[s.part] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return record, nil
}

func copyRecord(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
