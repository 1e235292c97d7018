package upload

import "sync"

// MaxFiles is the most screenshots a single session may carry
const MaxFiles = 10

// Store is the current screenshot selection. A new selection replaces the
// previous one wholesale and is truncated to MaxFiles in input order.
type Store struct {
	mu    sync.RWMutex
	files []*File
}

// NewStore returns an empty selection
func NewStore() *Store {
	return &Store{}
}

// Select replaces the selection with the first MaxFiles entries of files and
// reports how many entries were dropped.
func (s *Store) Select(files []*File) int {
	kept := files
	dropped := 0
	if len(kept) > MaxFiles {
		dropped = len(kept) - MaxFiles
		kept = kept[:MaxFiles]
	}

	next := make([]*File, 0, len(kept))
	for _, f := range kept {
		if f != nil {
			next = append(next, f)
		}
	}

	s.mu.Lock()
	s.files = next
	s.mu.Unlock()
	return dropped
}

// Clear empties the selection
func (s *Store) Clear() {
	s.mu.Lock()
	s.files = nil
	s.mu.Unlock()
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

func (s *Store) IsEmpty() bool {
	return s.Count() == 0
}

// Files returns a snapshot of the selection in order
func (s *Store) Files() []*File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*File, len(s.files))
	copy(out, s.files)
	return out
}

// TotalSize sums the declared sizes of the selection
func (s *Store) TotalSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, f := range s.files {
		total += f.Size
	}
	return total
}
