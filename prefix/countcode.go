// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prefix

import "errors"

// ErrBadCountCode is returned when a count-coded block does not begin with
// its expected 2-byte tag.
var ErrBadCountCode = errors.New("prefix: bad count code")

// AttachedSigTag precedes a block of attached, indexed signatures, per
// spec.md §4.1/§4.5.
const AttachedSigTag = "-A"

// ReceiptCoupletTag precedes a block of non-transferable receipt couplets
// (witness prefix + non-indexed signature pairs). spec.md and the original
// source leave the non-transferable receipt couplet-block framing
// unspecified; this module extends the "-A<NN>" attached-signature
// convention with a parallel "-C<NN>" tag rather than inventing an
// unrelated shape (see DESIGN.md).
const ReceiptCoupletTag = "-C"

// EncodeCountCode renders the "<tag><NN>" header for a block of n
// count-coded items.
func EncodeCountCode(tag string, n uint16) string {
	return tag + numToB64(n)
}

// DecodeCountCode reads a "<tag><NN>" header off the front of s, checking
// it against wantTag, and returns the declared count and the number of
// bytes consumed (always 4).
func DecodeCountCode(wantTag, s string) (uint16, int, error) {
	if len(s) < 4 || s[:2] != wantTag {
		return 0, 0, ErrBadCountCode
	}
	n, err := b64ToNum(s[2:4])
	if err != nil {
		return 0, 0, ErrBadCountCode
	}
	return n, 4, nil
}
