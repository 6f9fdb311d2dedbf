package params

// Store is an insertion-ordered collection of Values.
//
// Store carries no locking; callers serialize access through the registry
// lock of the owning filesystem.
type Store struct {
	values []Value
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds a value at the end of the store.
func (s *Store) Append(v Value) {
	s.values = append(s.values, v)
}

// Clear removes all values.
func (s *Store) Clear() {
	s.values = nil
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	return len(s.values)
}

// At returns the value at position i in insertion order.
func (s *Store) At(i int) Value {
	return s.values[i]
}

// Values returns a copy of the stored values in insertion order. The copy
// keeps callers from observing later mutations.
func (s *Store) Values() []Value {
	out := make([]Value, len(s.values))
	copy(out, s.values)
	return out
}

// Replace swaps the store content for the given values.
func (s *Store) Replace(vs []Value) {
	s.values = append([]Value(nil), vs...)
}
