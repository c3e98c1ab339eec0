// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prefix

import (
	"github.com/toole-brendan/keri/derivation"
)

// digestLens lists the derivation codes that identify a self-addressing
// digest, along with their raw byte length.
var digestLens = map[derivation.Code]int{
	derivation.CodeBlake3_256: 32,
	derivation.CodeBlake2b256: 32,
	derivation.CodeBlake2s256: 32,
	derivation.CodeSHA3_256:   32,
	derivation.CodeSHA2_256:   32,
	derivation.CodeSHA2_512:   64,
	derivation.CodeSHA3_512:   64,
}

// SelfAddressing is a digest prefix: a hash-derivation code plus the raw
// digest bytes it commits to a byte payload with.
type SelfAddressing struct {
	code derivation.Code
	raw  []byte
}

// DeriveSelfAddressing computes the self-addressing prefix of payload under
// the hash algorithm named by code.
func DeriveSelfAddressing(code derivation.Code, payload []byte) (SelfAddressing, error) {
	alg, err := derivation.HashAlgFor(code)
	if err != nil {
		return SelfAddressing{}, err
	}
	return SelfAddressing{code: code, raw: alg.Sum(payload)}, nil
}

// NewSelfAddressing builds a SelfAddressing prefix directly from
// already-computed digest bytes, validating the length against the code.
func NewSelfAddressing(code derivation.Code, raw []byte) (SelfAddressing, error) {
	n, ok := digestLens[code]
	if !ok {
		return SelfAddressing{}, ErrBadCode
	}
	if len(raw) != n {
		return SelfAddressing{}, ErrShortInput
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return SelfAddressing{code: code, raw: cp}, nil
}

// ParseSelfAddressing decodes a self-describing SelfAddressing prefix from
// its encoded form.
func ParseSelfAddressing(s string) (SelfAddressing, error) {
	code, raw, err := splitCode(s, func(c derivation.Code) (int, bool) {
		n, ok := digestLens[c]
		return n, ok
	})
	if err != nil {
		return SelfAddressing{}, err
	}
	return SelfAddressing{code: code, raw: raw}, nil
}

// Code implements Prefix.
func (d SelfAddressing) Code() derivation.Code { return d.code }

// Raw implements Prefix.
func (d SelfAddressing) Raw() []byte { return d.raw }

// String implements Prefix.
func (d SelfAddressing) String() string { return encode(d.code, d.raw) }

// Equal reports byte-equality of the encoded form.
func (d SelfAddressing) Equal(other SelfAddressing) bool {
	return d.code == other.code && string(d.raw) == string(other.raw)
}

// IsZero reports whether this digest is the unset zero value (no code and
// no digest bytes).
func (d SelfAddressing) IsZero() bool {
	return d.code == "" && len(d.raw) == 0
}

// VerifyBinding reports whether this digest equals hash(payload) under its
// own algorithm: the §4.4 "previous_event_hash.verify_binding(state.last)"
// and "self-addressing digest verifies over get_inception_data(icp)"
// checks both reduce to this one operation.
func (d SelfAddressing) VerifyBinding(payload []byte) bool {
	recomputed, err := DeriveSelfAddressing(d.code, payload)
	if err != nil {
		return false
	}
	return d.Equal(recomputed)
}
