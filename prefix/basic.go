// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prefix

import (
	"github.com/toole-brendan/keri/derivation"
)

// basicLens lists the derivation codes that identify a raw public key,
// along with their raw byte length.
var basicLens = map[derivation.Code]int{
	derivation.CodeEd25519:          32,
	derivation.CodeEd25519NT:        32,
	derivation.CodeECDSAsecp256k1:   33,
	derivation.CodeSchnorrSecp256k1: 32,
}

// Basic is a raw public key prefix: code identifies the key algorithm and
// whether the key is transferable (may later be rotated away from) or a
// one-time non-transferable key.
type Basic struct {
	code derivation.Code
	raw  []byte
}

// NewBasic builds a Basic prefix from a derivation code and the raw public
// key bytes. It validates the raw length against the code's table.
func NewBasic(code derivation.Code, raw []byte) (Basic, error) {
	n, ok := basicLens[code]
	if !ok {
		return Basic{}, ErrBadCode
	}
	if len(raw) != n {
		return Basic{}, ErrShortInput
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Basic{code: code, raw: cp}, nil
}

// ParseBasic decodes a self-describing Basic prefix from its encoded form.
func ParseBasic(s string) (Basic, error) {
	code, raw, err := splitCode(s, func(c derivation.Code) (int, bool) {
		n, ok := basicLens[c]
		return n, ok
	})
	if err != nil {
		return Basic{}, err
	}
	return Basic{code: code, raw: raw}, nil
}

// Code implements Prefix.
func (b Basic) Code() derivation.Code { return b.code }

// Raw implements Prefix.
func (b Basic) Raw() []byte { return b.raw }

// String implements Prefix.
func (b Basic) String() string { return encode(b.code, b.raw) }

// Transferable reports whether this key may be the subject of a future
// rotation (is part of an establishment-event key config whose control may
// move to a new key) as opposed to a one-time non-transferable witness key.
func (b Basic) Transferable() bool { return derivation.IsTransferable(b.code) }

// Equal reports byte-equality of the encoded form, per spec.md §3's prefix
// equality contract.
func (b Basic) Equal(other Basic) bool {
	return b.code == other.code && string(b.raw) == string(other.raw)
}

// Verify checks sig over msg using this prefix's public key and algorithm.
func (b Basic) Verify(msg, sig []byte) (bool, error) {
	sigCode, err := sigCodeForKey(b.code)
	if err != nil {
		return false, err
	}
	alg, err := derivation.SigAlgFor(sigCode)
	if err != nil {
		return false, err
	}
	return alg.Verify(b.raw, msg, sig)
}

// sigCodeForKey maps a basic-key derivation code to the signature code
// produced by that key's algorithm.
func sigCodeForKey(keyCode derivation.Code) (derivation.Code, error) {
	switch keyCode {
	case derivation.CodeEd25519, derivation.CodeEd25519NT:
		return derivation.CodeEd25519Sig, nil
	case derivation.CodeECDSAsecp256k1:
		return derivation.CodeECDSASecp256k1Sig, nil
	case derivation.CodeSchnorrSecp256k1:
		return derivation.CodeSchnorrSecp256k1Sig, nil
	default:
		return "", ErrBadCode
	}
}
