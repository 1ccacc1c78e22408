package httpclient

import "strings"

// Pair is one header entry. Header keeps insertion order, which the
// standard map-based http.Header discards.
type Pair struct {
	Name  string
	Value string
}

// Header is an ordered header list. Name lookups are case-insensitive and
// Set replaces in place, so scripts overwriting a header do not move it.
type Header struct {
	pairs []Pair
}

// NewHeader builds a Header from alternating name/value arguments.
func NewHeader(nameValue ...string) *Header {
	h := &Header{}
	for i := 0; i+1 < len(nameValue); i += 2 {
		h.Set(nameValue[i], nameValue[i+1])
	}
	return h
}

// Set stores value under name. An existing entry (compared case-insensitively)
// is updated in place; otherwise the entry is appended.
func (h *Header) Set(name, value string) {
	for i := range h.pairs {
		if strings.EqualFold(h.pairs[i].Name, name) {
			h.pairs[i].Value = value
			return
		}
	}
	h.pairs = append(h.pairs, Pair{Name: name, Value: value})
}

// Get returns the value for name, or "" when absent.
func (h *Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Lookup returns the value for name and whether it is present.
func (h *Header) Lookup(name string) (string, bool) {
	for i := range h.pairs {
		if strings.EqualFold(h.pairs[i].Name, name) {
			return h.pairs[i].Value, true
		}
	}
	return "", false
}

// Del removes the entry for name, if present.
func (h *Header) Del(name string) {
	for i := range h.pairs {
		if strings.EqualFold(h.pairs[i].Name, name) {
			h.pairs = append(h.pairs[:i], h.pairs[i+1:]...)
			return
		}
	}
}

// Pairs returns the entries in insertion order. The slice is a copy.
func (h *Header) Pairs() []Pair {
	out := make([]Pair, len(h.pairs))
	copy(out, h.pairs)
	return out
}

// Map returns the entries as a plain map keyed by the original names.
func (h *Header) Map() map[string]string {
	out := make(map[string]string, len(h.pairs))
	for _, p := range h.pairs {
		out[p.Name] = p.Value
	}
	return out
}

// Len returns the number of entries.
func (h *Header) Len() int {
	return len(h.pairs)
}

// Clone returns an independent copy.
func (h *Header) Clone() *Header {
	return &Header{pairs: h.Pairs()}
}
