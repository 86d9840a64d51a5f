package persona

import "strings"

// Store resolves the personas a session can speak as.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore indexes personas by ID and keeps their registration order for listing.
type MemoryStore struct {
	order []string
	byID  map[string]Persona
}

// NewMemoryStore registers items in order. Entries without an ID are skipped and
// the first persona registered under an ID wins.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{byID: make(map[string]Persona, len(items))}
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, dup := s.byID[item.ID]; dup {
			continue
		}
		s.order = append(s.order, item.ID)
		s.byID[item.ID] = item
	}
	return s
}

func (s *MemoryStore) List() []Persona {
	out := make([]Persona, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// FindByID ignores surrounding whitespace in id.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	p, ok := s.byID[strings.TrimSpace(id)]
	return p, ok
}
