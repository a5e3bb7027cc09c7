package lib

import (
	"sort"
	"sync"
)

// Set is thread-safe and can be passed by value. Graph code uses it for id
// de-duplication and highlight membership.
type Set struct {
	data map[string]struct{}
	mu   *sync.RWMutex
}

func NewSet(elems ...string) Set {
	s := Set{
		data: make(map[string]struct{}, len(elems)),
		mu:   &sync.RWMutex{},
	}
	for _, e := range elems {
		s.data[e] = struct{}{}
	}
	return s
}

func (s Set) Add(elem string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[elem] = struct{}{}
}

// Insert adds elem and reports whether it was absent before.
func (s Set) Insert(elem string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[elem]; exists {
		return false
	}
	s.data[elem] = struct{}{}
	return true
}

func (s Set) Remove(elem string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, elem)
}

func (s Set) Contains(elem string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.data[elem]
	return exists
}

func (s Set) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Clear removes every element.
func (s Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.data)
}

// AsSlice returns the elements in sorted order.
func (s Set) AsSlice() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elements := make([]string, 0, len(s.data))
	for elem := range s.data {
		elements = append(elements, elem)
	}
	sort.Strings(elements)

	return elements
}
