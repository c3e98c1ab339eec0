// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package serialization

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

// HexCompact is a uint64 wire type rendered as lowercase hex without a
// leading "0x", used for sn/sith/toad per spec.md §4.2 and §6. No ecosystem
// JSON/CBOR library speaks this exact hex-compact-as-string integer
// encoding, so it is hand-rolled here; see DESIGN.md for why stdlib is the
// right call for this one field type.
type HexCompact uint64

// MarshalJSON renders the value as a quoted lowercase-hex string.
func (h HexCompact) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%x", uint64(h)))
}

// UnmarshalJSON parses a quoted lowercase-hex string.
func (h *HexCompact) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return fmt.Errorf("serialization: bad hex-compact field %q: %w", s, err)
	}
	*h = HexCompact(n)
	return nil
}

// MarshalCBOR renders the value as a CBOR text string, matching the JSON
// wire shape (KERI's wire format keeps hex-compact integers as strings in
// both serializations, not CBOR native integers).
func (h HexCompact) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(fmt.Sprintf("%x", uint64(h)))
}

// UnmarshalCBOR parses a CBOR text string as lowercase hex.
func (h *HexCompact) UnmarshalCBOR(b []byte) error {
	var s string
	if err := cbor.Unmarshal(b, &s); err != nil {
		return err
	}
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return fmt.Errorf("serialization: bad hex-compact field %q: %w", s, err)
	}
	*h = HexCompact(n)
	return nil
}
