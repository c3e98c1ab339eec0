// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package serialization

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"github.com/toole-brendan/keri/kerierr"
)

// cborMode is a deterministic CBOR encoding mode (core deterministic
// encoding, canonical map key ordering) so that re-encoding the same Go
// value always reproduces the same bytes — required for the two-pass
// length-fixing procedure below to converge.
var cborMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Marshal encodes v once under format.
func Marshal(format Format, v interface{}) ([]byte, error) {
	switch format {
	case JSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, kerierr.Serialization("serialization: json encode: %v", err)
		}
		return b, nil
	case CBOR:
		b, err := cborMode.Marshal(v)
		if err != nil {
			return nil, kerierr.Serialization("serialization: cbor encode: %v", err)
		}
		return b, nil
	default:
		return nil, kerierr.Serialization("serialization: unsupported format %q", format)
	}
}

// Unmarshal decodes exactly one value of format from b into v.
func Unmarshal(format Format, b []byte, v interface{}) error {
	switch format {
	case JSON:
		if err := json.Unmarshal(b, v); err != nil {
			return kerierr.Serialization("serialization: json decode: %v", err)
		}
		return nil
	case CBOR:
		if err := cbor.Unmarshal(b, v); err != nil {
			return kerierr.Serialization("serialization: cbor decode: %v", err)
		}
		return nil
	default:
		return kerierr.Serialization("serialization: unsupported format %q", format)
	}
}

// EncodeSized implements the spec.md §4.2 encoding procedure:
//  1. encode once with the length field set to zero (via setVS),
//  2. measure the length,
//  3. re-encode with the true length.
//
// setVS installs a version string of the given size into the value that
// marshal will subsequently serialize; marshal performs the actual
// encode. Both passes are required to produce the same byte length for the
// same format, which holds here because VersionString.String always
// zero-pads its size field to 6 hex digits.
func EncodeSized(format Format, setVS func(vs string), marshal func() ([]byte, error)) ([]byte, error) {
	setVS(New(format, 0).String())
	first, err := marshal()
	if err != nil {
		return nil, err
	}
	setVS(New(format, len(first)).String())
	second, err := marshal()
	if err != nil {
		return nil, err
	}
	if len(second) != len(first) {
		return nil, kerierr.Serialization(
			"serialization: size field changed encoded length (%d -> %d)", len(first), len(second))
	}
	return second, nil
}
