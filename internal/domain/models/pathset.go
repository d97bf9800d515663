package models

import "sort"

// PathSet is an unordered set of filesystem paths with duplicates collapsed.
// It carries both path patterns (which may contain glob metacharacters) and
// the concrete matches produced by expanding them.
type PathSet struct {
	paths map[string]struct{}
}

// NewPathSet creates a set containing the given paths
func NewPathSet(paths ...string) *PathSet {
	s := &PathSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

// Add inserts a path; empty strings are ignored
func (s *PathSet) Add(path string) {
	if path == "" {
		return
	}
	s.paths[path] = struct{}{}
}

// AddAll inserts every path from other
func (s *PathSet) AddAll(other *PathSet) {
	if other == nil {
		return
	}
	for p := range other.paths {
		s.paths[p] = struct{}{}
	}
}

// Contains reports whether path is in the set
func (s *PathSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Len returns the number of paths in the set
func (s *PathSet) Len() int {
	return len(s.paths)
}

// Sorted returns the paths in lexicographic order. Reports and remediation
// iterate in this order so output is deterministic.
func (s *PathSet) Sorted() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
