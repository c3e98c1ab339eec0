// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package serialization implements the dual JSON/CBOR event-message codec
// from spec.md §4.2: the version-string header whose size field must equal
// the encoded length, produced by the two-pass encode-measure-re-encode
// procedure. It plays the role the teacher's wire package plays for
// Bitcoin's versioned, length-framed messages (wire.ProtocolVersion and its
// const table), adapted to a self-describing textual header instead of a
// fixed binary one.
package serialization

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/toole-brendan/keri/kerierr"
)

// Format identifies the wire serialization used for an event message body.
type Format string

const (
	// JSON is fully supported.
	JSON Format = "JSON"
	// CBOR is fully supported.
	CBOR Format = "CBOR"
	// MsgPack is reserved, per spec.md §4.2, and is not implemented.
	MsgPack Format = "MGPK"
)

// Protocol is the only protocol/version prefix this module understands.
const Protocol = "KERI10"

// versionStringRe matches "KERI10<FMT>NNNNNN_" where FMT is 4 characters
// and NNNNNN is 6 lowercase hex digits.
var versionStringRe = regexp.MustCompile(`^([A-Za-z0-9]{6})([A-Z]{4})([0-9a-f]{6})_$`)

// VersionString is the parsed form of the "vs" field: protocol/version
// literal, wire format, and the total encoded byte length of the message
// that carries it.
type VersionString struct {
	Protocol string
	Fmt      Format
	Size     int
}

// New builds a VersionString for the given format and size.
func New(format Format, size int) VersionString {
	return VersionString{Protocol: Protocol, Fmt: format, Size: size}
}

// String renders "KERI10<FMT>NNNNNN_" with NNNNNN the lowercase-hex size,
// zero-padded to 6 digits regardless of the magnitude of Size — this fixed
// width is exactly what makes the two-pass zero-then-real-size encode
// procedure produce byte-identical lengths.
func (v VersionString) String() string {
	return fmt.Sprintf("%s%s%06x_", v.Protocol, v.Fmt, v.Size)
}

// Parse decodes a version string, validating its shape per spec.md §4.2.
func Parse(s string) (VersionString, error) {
	m := versionStringRe.FindStringSubmatch(s)
	if m == nil {
		return VersionString{}, kerierr.Serialization("serialization: malformed version string %q", s)
	}
	size, err := strconv.ParseInt(m[3], 16, 64)
	if err != nil {
		return VersionString{}, kerierr.Serialization("serialization: bad version-string size field: %v", err)
	}
	return VersionString{Protocol: m[1], Fmt: Format(m[2]), Size: int(size)}, nil
}
