// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prefix

import (
	"github.com/toole-brendan/keri/derivation"
)

// sigLens lists the derivation codes that identify a bare signature, along
// with their raw byte length.
var sigLens = map[derivation.Code]int{
	derivation.CodeEd25519Sig:          64,
	derivation.CodeECDSASecp256k1Sig:   64,
	derivation.CodeSchnorrSecp256k1Sig: 64,
}

// SelfSigning is a signature prefix: a signature-derivation code plus the
// raw signature bytes, with no accompanying key index (contrast
// AttachedSignature).
type SelfSigning struct {
	code derivation.Code
	raw  []byte
}

// NewSelfSigning builds a SelfSigning prefix, validating raw length.
func NewSelfSigning(code derivation.Code, raw []byte) (SelfSigning, error) {
	n, ok := sigLens[code]
	if !ok {
		return SelfSigning{}, ErrBadCode
	}
	if len(raw) != n {
		return SelfSigning{}, ErrShortInput
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return SelfSigning{code: code, raw: cp}, nil
}

// ParseSelfSigning decodes a self-describing SelfSigning prefix.
func ParseSelfSigning(s string) (SelfSigning, error) {
	code, raw, err := splitCode(s, func(c derivation.Code) (int, bool) {
		n, ok := sigLens[c]
		return n, ok
	})
	if err != nil {
		return SelfSigning{}, err
	}
	return SelfSigning{code: code, raw: raw}, nil
}

// Code implements Prefix.
func (s SelfSigning) Code() derivation.Code { return s.code }

// Raw implements Prefix.
func (s SelfSigning) Raw() []byte { return s.raw }

// String implements Prefix.
func (s SelfSigning) String() string { return encode(s.code, s.raw) }

// Equal reports byte-equality of the encoded form.
func (s SelfSigning) Equal(other SelfSigning) bool {
	return s.code == other.code && string(s.raw) == string(other.raw)
}
