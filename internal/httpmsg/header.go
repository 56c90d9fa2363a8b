package httpmsg

import "strings"

// Header is a case-insensitive name -> value mapping that preserves the
// first occurrence on a duplicate name. Storage keys on the
// lower-cased name and separately remembers the name as first written,
// so Each can still report it in its original case.
type Header struct {
	order []string          // lower-cased names in first-seen order
	names map[string]string // lower-cased name -> original-case name
	vals  map[string]string // lower-cased name -> first value
}

// NewHeader returns an empty Header ready for use.
func NewHeader() Header {
	return Header{
		names: make(map[string]string),
		vals:  make(map[string]string),
	}
}

// Set stores name/value, keeping the first value seen for a given name
// (case-insensitive) and ignoring later duplicates.
func (h *Header) Set(name, value string) {
	if h.vals == nil {
		*h = NewHeader()
	}
	key := strings.ToLower(name)
	if _, exists := h.vals[key]; exists {
		return
	}
	h.order = append(h.order, key)
	h.names[key] = name
	h.vals[key] = value
}

// Replace stores name/value unconditionally, overwriting any existing
// value for name. Used when composing responses, where the server is
// the single writer and "first wins" does not apply.
func (h *Header) Replace(name, value string) {
	if h.vals == nil {
		*h = NewHeader()
	}
	key := strings.ToLower(name)
	if _, exists := h.vals[key]; !exists {
		h.order = append(h.order, key)
	}
	h.names[key] = name
	h.vals[key] = value
}

// Get returns the value for name (case-insensitive) and whether it was
// present.
func (h Header) Get(name string) (string, bool) {
	v, ok := h.vals[strings.ToLower(name)]
	return v, ok
}

// Has reports whether name is present, case-insensitively.
func (h Header) Has(name string) bool {
	_, ok := h.vals[strings.ToLower(name)]
	return ok
}

// Each calls fn once per header in first-occurrence order, using the
// original-case name it was first set with.
func (h Header) Each(fn func(name, value string)) {
	for _, key := range h.order {
		fn(h.names[key], h.vals[key])
	}
}
