package store

import "strings"

// Key is a structured store key composed of string segments.
// A scalar key is a one-segment Key; composite keys carry one segment
// per component, which enables per-segment pattern matching in All.
type Key []string

// K builds a Key from its segments.
func K(segments ...string) Key {
	return Key(segments)
}

// Equal reports whether two keys have identical segments.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i, seg := range k {
		if seg != other[i] {
			return false
		}
	}
	return true
}

// String returns a human-readable form of the key for logging.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// Wildcard matches any value at its position in a Pattern.
const Wildcard = "*"

// Pattern matches keys segment-wise: a pattern matches a key only when
// both have the same number of segments and every pattern segment is
// either equal to the corresponding key segment or is Wildcard.
type Pattern []string

// P builds a Pattern from its segments.
func P(segments ...string) Pattern {
	return Pattern(segments)
}

// Match reports whether the pattern matches the given key.
func (p Pattern) Match(key Key) bool {
	if len(p) != len(key) {
		return false
	}
	for i, seg := range p {
		if seg != Wildcard && seg != key[i] {
			return false
		}
	}
	return true
}

// sep separates the namespace and key segments in the encoded form.
// A non-printable separator keeps application segments from colliding
// with the encoding.
const sep = "\x1f"

// encodeKey flattens a namespaced key into the internal table key.
func encodeKey(namespace string, key Key) string {
	return namespace + sep + strings.Join(key, sep)
}
