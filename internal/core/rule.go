package core

import (
	"errors"
	"fmt"
)

// ErrBadEncoding marks rule encodings that do not decode to a total
// transition table. Undecodable candidates are rejected before evaluation.
var ErrBadEncoding = errors.New("malformed rule encoding")

// RuleKind tags the closed set of supported rule families.
type RuleKind uint8

const (
	// KindTotalistic is a binary outer-totalistic rule on the 8-cell Moore
	// neighborhood: nine birth bits and nine survival bits indexed by the
	// live-neighbor count. Conway's Life is B3/S23 in this family.
	KindTotalistic RuleKind = 1
	// KindElementary is a Wolfram elementary rule (8-bit code) on a
	// one-dimensional, height-1 grid with a left/self/right neighborhood.
	KindElementary RuleKind = 2
)

const (
	totalisticBits = 18
	elementaryBits = 8

	kindShift = 56
)

// PayloadBits returns the width of the kind's transition table in bits.
func (k RuleKind) PayloadBits() int {
	switch k {
	case KindTotalistic:
		return totalisticBits
	case KindElementary:
		return elementaryBits
	}
	return 0
}

// EncodingSpace returns the number of distinct encodings in the kind's
// family. Enumerative search iterates exactly this range.
func (k RuleKind) EncodingSpace() uint64 {
	bits := k.PayloadBits()
	if bits == 0 {
		return 0
	}
	return 1 << bits
}

// String names the kind for logs and stored rows.
func (k RuleKind) String() string {
	switch k {
	case KindTotalistic:
		return "totalistic"
	case KindElementary:
		return "elementary"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseRuleKind resolves a kind name used in configuration.
func ParseRuleKind(name string) (RuleKind, error) {
	switch name {
	case "totalistic":
		return KindTotalistic, nil
	case "elementary":
		return KindElementary, nil
	}
	return 0, fmt.Errorf("unknown rule kind %q", name)
}

// Rule is an immutable transition table over one of the supported
// neighborhood shapes. The table is total by construction: every reachable
// (state, neighborhood summary) pair has a defined next state.
type Rule struct {
	kind  RuleKind
	table uint32
}

// NewTotalistic builds an outer-totalistic rule from birth and survival
// bitmasks indexed by live-neighbor count (bit n set: count n triggers).
func NewTotalistic(birth, survival uint16) (Rule, error) {
	if birth > 0x1ff || survival > 0x1ff {
		return Rule{}, fmt.Errorf("%w: neighbor-count masks use bits 0-8", ErrBadEncoding)
	}
	return Rule{kind: KindTotalistic, table: uint32(birth) | uint32(survival)<<9}, nil
}

// NewElementary builds a Wolfram elementary rule from its 8-bit code.
func NewElementary(code uint8) Rule {
	return Rule{kind: KindElementary, table: uint32(code)}
}

// Life returns Conway's Game of Life (B3/S23).
func Life() Rule {
	r, _ := NewTotalistic(1<<3, 1<<2|1<<3)
	return r
}

// RandomRule draws a uniformly random rule of the given kind from the
// provided stream.
func RandomRule(kind RuleKind, rng *RNG) (Rule, error) {
	space := kind.EncodingSpace()
	if space == 0 {
		return Rule{}, fmt.Errorf("%w: unknown kind %d", ErrBadEncoding, kind)
	}
	payload := rng.Uint64() & (space - 1)
	return Rule{kind: kind, table: uint32(payload)}, nil
}

// Kind returns the rule family tag.
func (r Rule) Kind() RuleKind { return r.kind }

// Is1D reports whether the rule runs on a one-dimensional lattice.
func (r Rule) Is1D() bool { return r.kind == KindElementary }

// Encode returns the canonical fixed-width encoding: the kind tag in the top
// byte and the transition table in the low bits. Encode and DecodeRule
// round-trip exactly.
func (r Rule) Encode() uint64 {
	return uint64(r.kind)<<kindShift | uint64(r.table)
}

// DecodeRule reconstructs a rule from its canonical encoding. Unknown kind
// tags and payload bits outside the kind's table width are rejected.
func DecodeRule(enc uint64) (Rule, error) {
	kind := RuleKind(enc >> kindShift)
	bits := kind.PayloadBits()
	if bits == 0 {
		return Rule{}, fmt.Errorf("%w: unknown kind tag %d", ErrBadEncoding, uint8(kind))
	}
	payload := enc &^ (uint64(0xff) << kindShift)
	if payload >= uint64(1)<<bits {
		return Rule{}, fmt.Errorf("%w: payload %#x exceeds %d table bits", ErrBadEncoding, payload, bits)
	}
	return Rule{kind: kind, table: uint32(payload)}, nil
}

// Transition maps (current state, neighborhood summary) to the next state.
// For totalistic rules the summary is the live-neighbor count 0-8; for
// elementary rules it is the 3-bit left/self/right pattern. Lookup is a
// single shift and mask so the stepping loop stays branch-predictable.
func (r Rule) Transition(state uint8, summary uint32) uint8 {
	switch r.kind {
	case KindTotalistic:
		if state != 0 {
			return uint8(r.table >> (9 + summary) & 1)
		}
		return uint8(r.table >> summary & 1)
	case KindElementary:
		return uint8(r.table >> summary & 1)
	}
	return 0
}

// String renders the canonical encoding in a stable hex form.
func (r Rule) String() string {
	return fmt.Sprintf("%s:%#x", r.kind, uint64(r.table))
}
