// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package prefix implements the self-describing base64-url prefix codec:
// the tagged encoding KERI uses for keys, digests, and signatures, modeled
// on the multi-variant address codec in the teacher repo's addresses
// package (one constructor and one String() per variant, package-level
// Err* sentinels, byte-exact round trip).
package prefix

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/toole-brendan/keri/derivation"
)

var (
	// ErrBadCode is returned when a prefix's leading derivation code is
	// unrecognized.
	ErrBadCode = errors.New("prefix: unrecognized derivation code")

	// ErrShortInput is returned when the encoded string is too short to
	// contain its declared derivation code and raw derivative.
	ErrShortInput = errors.New("prefix: input too short for declared code")

	// ErrBadIndex is returned when an attached-signature index cannot be
	// decoded from its 2-character base64 field.
	ErrBadIndex = errors.New("prefix: bad attached-signature index")
)

// b64 is the RFC 4648 §5 alphabet used for derivation codes, indices, and
// the derivative payload, all without padding.
var b64 = base64.RawURLEncoding

// Prefix is the common contract every derivation-coded value satisfies:
// the derivation code that tags it and the raw (undecoded) bytes it
// derives from.
type Prefix interface {
	// Code returns the derivation code for this prefix.
	Code() derivation.Code

	// Raw returns the raw derivative bytes (the public key, digest, or
	// signature payload, not including the leading derivation code).
	Raw() []byte

	// String returns the self-describing base64-url encoded form:
	// code + base64url(raw).
	String() string
}

// encode renders code + base64url(raw) with no interior padding.
func encode(code derivation.Code, raw []byte) string {
	return string(code) + b64.EncodeToString(raw)
}

// splitCode reads a known-length derivation code off the front of s and
// returns the code and its decoded raw payload. Derivation codes are 1, 2
// or 4 ASCII characters; this tries the 1-char prefix of s first against
// the table validLen consults, then the 2-char and 4-char prefixes,
// matching the code-then-length-table decode discipline in spec.md §4.1.
func splitCode(s string, validLen func(derivation.Code) (int, bool)) (derivation.Code, []byte, error) {
	for _, codeLen := range []int{1, 2, 4} {
		if len(s) < codeLen {
			continue
		}
		code := derivation.Code(s[:codeLen])
		if rawLen, ok := validLen(code); ok {
			encLen := base64EncodedLen(rawLen)
			if len(s) < codeLen+encLen {
				return "", nil, ErrShortInput
			}
			raw, err := b64.DecodeString(s[codeLen : codeLen+encLen])
			if err != nil {
				return "", nil, fmt.Errorf("prefix: %w", err)
			}
			return code, raw, nil
		}
	}
	return "", nil, ErrBadCode
}

// base64EncodedLen returns the number of base64url characters (no padding)
// needed to encode n raw bytes.
func base64EncodedLen(n int) int {
	return (n*8 + 5) / 6
}
