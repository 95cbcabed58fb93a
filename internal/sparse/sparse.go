// Package sparse provides a sparse set of small integers with constant-time
// insertion, removal, membership and clearing.
//
// The compiler uses it to track the groups being expanded while it follows
// subroutine calls, where the universe is the number of capture groups.
package sparse

// Set is a set of uint32 values below a fixed capacity. It keeps a sparse
// array mapping values to positions in a dense array of members.
type Set struct {
	sparse []uint32
	dense  []uint32
}

// NewSet returns an empty set able to hold the values [0, capacity).
func NewSet(capacity int) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds v and reports whether it was absent. Values outside the
// capacity are ignored.
func (s *Set) Insert(v uint32) bool {
	if int(v) >= len(s.sparse) || s.Contains(v) {
		return false
	}
	s.sparse[v] = uint32(len(s.dense))
	s.dense = append(s.dense, v)
	return true
}

// Contains reports whether v is in the set.
func (s *Set) Contains(v uint32) bool {
	if int(v) >= len(s.sparse) {
		return false
	}
	i := s.sparse[v]
	return int(i) < len(s.dense) && s.dense[i] == v
}

// Remove deletes v if present.
func (s *Set) Remove(v uint32) {
	if !s.Contains(v) {
		return
	}
	i := s.sparse[v]
	last := s.dense[len(s.dense)-1]
	s.dense[i] = last
	s.sparse[last] = i
	s.dense = s.dense[:len(s.dense)-1]
}

// Clear empties the set.
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.dense)
}

// Values returns the members in an unspecified order. The slice is valid
// until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}
