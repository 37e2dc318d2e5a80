// Package ds provides small generic data structures shared by the runtime.
package ds

import "fmt"

// Set is an ordered set: O(1) membership tests with iteration in insertion
// order. Re-adding an element keeps its original position.
//
// Set is not safe for concurrent use; callers guard it with their own lock.
type Set[T comparable] struct {
	items map[T]struct{}
	order []T
}

// NewSet creates a set holding items in the given order.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{items: make(map[T]struct{}, len(items)), order: make([]T, 0, len(items))}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s *Set[T]) String() string { return fmt.Sprintf("%v", s.order) }

// Add inserts v and reports whether it was not present before.
func (s *Set[T]) Add(v T) bool {
	if s.Contains(v) {
		return false
	}
	if s.items == nil {
		s.items = make(map[T]struct{})
	}
	s.items[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Remove deletes the given values and returns how many were present.
// It is O(n) in the size of the set.
func (s *Set[T]) Remove(vs ...T) int {
	removed := 0
	for _, v := range vs {
		if _, ok := s.items[v]; ok {
			delete(s.items, v)
			removed++
		}
	}
	if removed == 0 {
		return 0
	}

	kept := s.order[:0]
	for _, v := range s.order {
		if _, ok := s.items[v]; ok {
			kept = append(kept, v)
		}
	}
	clear(s.order[len(kept):])
	s.order = kept
	return removed
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.items[v]
	return ok
}

func (s *Set[T]) Len() int { return len(s.items) }

func (s *Set[T]) IsEmpty() bool { return len(s.items) == 0 }

// ForEach calls fn for every element in insertion order. fn must not mutate s.
func (s *Set[T]) ForEach(fn func(T)) {
	for _, v := range s.order {
		fn(v)
	}
}

// Values returns a copy of the elements in insertion order.
func (s *Set[T]) Values() []T {
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}

// Clear removes all elements.
func (s *Set[T]) Clear() {
	s.items = make(map[T]struct{})
	s.order = nil
}
