package datatree

import "unicode/utf8"

// ValueSet records distinct values by key. Null is tracked apart from every
// key, so no string can collide with it.
type ValueSet struct {
	keys    map[string]struct{}
	hasNull bool
}

// Add records key.
func (s *ValueSet) Add(key string) {
	if s.keys == nil {
		s.keys = make(map[string]struct{})
	}
	s.keys[key] = struct{}{}
}

// AddNull records the null value.
func (s *ValueSet) AddNull() {
	s.hasNull = true
}

// Has reports whether key was recorded.
func (s *ValueSet) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// HasNull reports whether null was recorded.
func (s *ValueSet) HasNull() bool {
	return s.hasNull
}

// Len returns the number of distinct values, counting null once.
func (s *ValueSet) Len() int {
	n := len(s.keys)
	if s.hasNull {
		n++
	}
	return n
}

// Extent is an inclusive running min/max under a caller-supplied order.
type Extent[T any] struct {
	min, max T
	set      bool
	less     func(a, b T) bool
}

// NewExtent returns an empty extent ordered by less.
func NewExtent[T any](less func(a, b T) bool) Extent[T] {
	return Extent[T]{less: less}
}

// Add widens the extent to include v.
func (e *Extent[T]) Add(v T) {
	if !e.set {
		e.min, e.max, e.set = v, v, true
		return
	}
	if e.less(v, e.min) {
		e.min = v
	}
	if e.less(e.max, v) {
		e.max = v
	}
}

// Min returns the smallest value added.
func (e *Extent[T]) Min() (T, bool) {
	return e.min, e.set
}

// Max returns the largest value added.
func (e *Extent[T]) Max() (T, bool) {
	return e.max, e.set
}

// widest tracks the longest string representation seen.
type widest struct {
	s   string
	n   int
	set bool
}

func (w *widest) add(s string) {
	n := utf8.RuneCountInString(s)
	if !w.set || n > w.n {
		w.s, w.n, w.set = s, n, true
	}
}
