// Package dedup tracks which items have already been posted.
//
// A Set is owned by a single run. It is loaded once at start, mutated by the
// publisher as sends succeed, and saved once at the end. The size bound is
// applied only when saving.
package dedup

// DefaultMaxIDs bounds the persisted history.
const DefaultMaxIDs = 5000

// Set is an insertion-ordered set of ids. It is not safe for concurrent use.
type Set struct {
	order []string
	index map[string]struct{}
}

// NewSet builds a set from ids (oldest first), dropping duplicates and empty ids.
func NewSet(ids ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Record(id)
	}
	return s
}

func (s *Set) Contains(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Record adds id as the most recent entry. Recording a known id is a no-op.
func (s *Set) Record(id string) {
	if id == "" {
		return
	}
	if s.index == nil {
		s.index = map[string]struct{}{}
	}
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns a copy of all ids, oldest first.
func (s *Set) IDs() []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s.order...)
}

// Tail returns a copy of the max most recently recorded ids, oldest first.
// A max <= 0 means unbounded.
func (s *Set) Tail(max int) []string {
	ids := s.IDs()
	if max <= 0 || len(ids) <= max {
		return ids
	}
	return ids[len(ids)-max:]
}
