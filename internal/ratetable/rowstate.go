package ratetable

// RawInput is what the user typed into a row's amount field. The zero value is
// the unset marker, which is distinct from a typed "0".
type RawInput struct {
	text  string
	typed bool
}

// Unset is the marker for a row the user has not typed into.
var Unset = RawInput{}

// Typed wraps raw text exactly as entered. Invalid or partial numbers are kept
// verbatim; they are coerced only when the row is rendered.
func Typed(text string) RawInput {
	return RawInput{text: text, typed: true}
}

// Text returns the raw text, or "" for the unset marker.
func (r RawInput) Text() string { return r.text }

// IsSet reports whether the user has typed into the row at all.
func (r RawInput) IsSet() bool { return r.typed }

// Blank reports whether the row should show the placeholder: either nothing
// was typed or the field was cleared.
func (r RawInput) Blank() bool { return !r.typed || r.text == "" }

// RowStore maps record keys to raw user input for one table.
type RowStore struct {
	entries map[string]RawInput
}

// NewRowStore creates an empty store.
func NewRowStore() *RowStore {
	return &RowStore{entries: make(map[string]RawInput)}
}

// Get returns the input stored for key, or Unset.
func (s *RowStore) Get(key string) RawInput {
	return s.entries[key]
}

// Set overwrites the input for key. Storing Unset removes the entry.
func (s *RowStore) Set(key string, in RawInput) {
	if !in.typed {
		delete(s.entries, key)
		return
	}
	s.entries[key] = in
}

// Clear drops every entry.
func (s *RowStore) Clear() {
	clear(s.entries)
}

// Len is the number of rows holding input.
func (s *RowStore) Len() int {
	return len(s.entries)
}
