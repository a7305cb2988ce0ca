// Package canonical produces the deterministic JSON bytes that blah signs.
//
// Contents
//
//   - Marshal: encode a Go value as RFC 8785 (JCS) canonical JSON
//   - Transform: canonicalize arbitrary JSON text
//   - DecodeStrict: decode one JSON value, rejecting unknown fields and
//     trailing data
//
// # Rules
//
// Object members are sorted by key, arrays keep their order, there is no
// insignificant whitespace and numbers use the ECMAScript shortest form.
// Integers must be exactly representable as IEEE-754 doubles (I-JSON);
// larger magnitudes are rejected rather than silently rounded. Two values
// that are structurally equal always encode to the same bytes, whatever
// the declaration order of their Go struct fields.
package canonical
