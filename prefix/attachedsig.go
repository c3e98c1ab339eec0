// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prefix

import (
	"github.com/toole-brendan/keri/derivation"
)

// AttachedSignature is a signature prefix carrying the signing key's
// position (index) in the active key list, as attached to a signed event
// message per spec.md §3/§4.1.
type AttachedSignature struct {
	code  derivation.Code
	index uint16
	raw   []byte
}

// NewAttachedSignature builds an AttachedSignature prefix.
func NewAttachedSignature(code derivation.Code, index uint16, raw []byte) (AttachedSignature, error) {
	n, ok := sigLens[code]
	if !ok {
		return AttachedSignature{}, ErrBadCode
	}
	if len(raw) != n {
		return AttachedSignature{}, ErrShortInput
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return AttachedSignature{code: code, index: index, raw: cp}, nil
}

// ParseAttachedSignature decodes one attached signature: a 1- or 2-char
// signature-derivation code, a 2-char base64 signing-key index, and the raw
// signature bytes, returning the prefix and the number of input bytes
// consumed.
func ParseAttachedSignature(s string) (AttachedSignature, int, error) {
	if len(s) < 1 {
		return AttachedSignature{}, 0, ErrShortInput
	}
	var code derivation.Code
	n := 0
	for _, l := range []int{1, 2} {
		if len(s) < l {
			break
		}
		if rawLen, ok := sigLens[derivation.Code(s[:l])]; ok {
			code, n = derivation.Code(s[:l]), rawLen
			break
		}
	}
	if code == "" {
		return AttachedSignature{}, 0, ErrBadCode
	}
	codeLen := len(code)
	idxEncLen := 2
	rawEncLen := base64EncodedLen(n)
	total := codeLen + idxEncLen + rawEncLen
	if len(s) < total {
		return AttachedSignature{}, 0, ErrShortInput
	}
	index, err := b64ToNum(s[codeLen : codeLen+idxEncLen])
	if err != nil {
		return AttachedSignature{}, 0, ErrBadIndex
	}
	raw, err := b64.DecodeString(s[codeLen+idxEncLen : total])
	if err != nil {
		return AttachedSignature{}, 0, ErrShortInput
	}
	return AttachedSignature{code: code, index: index, raw: raw}, total, nil
}

// Code implements Prefix.
func (a AttachedSignature) Code() derivation.Code { return a.code }

// Raw implements Prefix.
func (a AttachedSignature) Raw() []byte { return a.raw }

// Index returns the signing key's position in the active key list.
func (a AttachedSignature) Index() uint16 { return a.index }

// String implements Prefix: code, then the 2-char base64 index, then the
// base64url-encoded raw signature.
func (a AttachedSignature) String() string {
	return string(a.code) + numToB64(a.index) + b64.EncodeToString(a.raw)
}

// b64ToNum decodes a fixed-width 2-character base64url count/index field
// into a uint16 by reading each character's raw 6-bit value directly (a
// 2-character field encodes 12 bits, not a whole number of bytes, so it
// cannot go through a standard byte-oriented base64 decoder), mirroring the
// keriox attached_signature::b64_to_num helper.
func b64ToNum(s string) (uint16, error) {
	return decodeB64Digits(s)
}

// numToB64 encodes n into a 2-character base64url count/index field.
func numToB64(n uint16) string {
	hi := b64Alphabet[(n>>6)&0x3F]
	lo := b64Alphabet[n&0x3F]
	return string([]byte{hi, lo})
}

const b64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

var b64Index = func() map[byte]uint16 {
	m := make(map[byte]uint16, len(b64Alphabet))
	for i := 0; i < len(b64Alphabet); i++ {
		m[b64Alphabet[i]] = uint16(i)
	}
	return m
}()

// decodeB64Digits decodes a 2-character base64url count field as two 6-bit
// digits (12 bits total, count/index values fit in the low bits).
func decodeB64Digits(s string) (uint16, error) {
	if len(s) != 2 {
		return 0, ErrBadIndex
	}
	hi, ok1 := b64Index[s[0]]
	lo, ok2 := b64Index[s[1]]
	if !ok1 || !ok2 {
		return 0, ErrBadIndex
	}
	return hi<<6 | lo, nil
}
