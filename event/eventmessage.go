// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"encoding/base64"
	"strings"

	"github.com/toole-brendan/keri/derivation"
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/keyconfig"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/serialization"
	"github.com/toole-brendan/keri/state"
)

// Format re-exports serialization.Format so callers need not import the
// serialization package just to choose a wire format.
type Format = serialization.Format

const (
	JSON = serialization.JSON
	CBOR = serialization.CBOR
)

// EventMessage is an Event together with the version-string header and the
// exact raw bytes it was (or will be) encoded to, per spec.md §4.2. Raw is
// what IdentifierState.Last stores and what a self-addressing digest always
// commits to — never a re-encoded form.
type EventMessage struct {
	VS    serialization.VersionString
	Event Event
	Raw   []byte
}

// keyConfigOf extracts the establishment KeyConfig from an inception-family
// EventData, or reports false if data does not carry one.
func keyConfigOf(data EventData) (keyconfig.KeyConfig, bool) {
	switch d := data.(type) {
	case Icp:
		return d.KeyConfig, true
	case Dip:
		return d.KeyConfig, true
	default:
		return keyconfig.KeyConfig{}, false
	}
}

// dummyPrefixPlaceholder renders the fixed-width placeholder string
// get_inception_data substitutes for the not-yet-known self-addressing
// prefix: the derivation code followed by one '#' per base64 character the
// real digest will occupy, so the placeholder-bearing and
// final-digest-bearing encodings always have identical length.
func dummyPrefixPlaceholder(code derivation.Code) (string, error) {
	n, err := derivation.RawLen(code)
	if err != nil {
		return "", err
	}
	return string(code) + strings.Repeat("#", base64.RawURLEncoding.EncodedLen(n)), nil
}

// getInceptionData renders data (an Icp or Dip payload) with its "pre"
// field set to the dummy placeholder for code, through the same two-pass
// size-fixing procedure used for real serialization. Its result is the
// payload a self-addressing inception identifier's digest is computed
// over, grounded directly on the original source's get_inception_data.
func getInceptionData(format Format, data EventData, code derivation.Code) ([]byte, error) {
	dummy, err := dummyPrefixPlaceholder(code)
	if err != nil {
		return nil, err
	}
	tmp := Event{Sn: 0, Data: data}
	w, err := tmp.toWire()
	if err != nil {
		return nil, err
	}
	w.Pre = dummy
	return serialization.EncodeSized(format,
		func(vs string) { w.Vs = vs },
		func() ([]byte, error) { return serialization.Marshal(format, w) })
}

// NewInceptionMessage mints and serializes an Icp or Dip event: when
// prefixCode is empty the identifier is Basic-derived from data's sole
// public key; otherwise it is a SelfAddressing digest computed via the
// dummy-substitution procedure over data under prefixCode.
func NewInceptionMessage(format Format, data EventData, prefixCode derivation.Code) (EventMessage, error) {
	kc, ok := keyConfigOf(data)
	if !ok {
		return EventMessage{}, kerierr.Semantic("event: %s is not an inception event", data.Ilk())
	}

	var pre prefix.IdentifierPrefix
	if prefixCode == "" {
		if len(kc.PublicKeys) != 1 {
			return EventMessage{}, kerierr.Semantic("event: basic-derived identifier requires exactly one public key, got %d", len(kc.PublicKeys))
		}
		pre = prefix.NewIdentifierBasic(kc.PublicKeys[0])
	} else {
		payload, err := getInceptionData(format, data, prefixCode)
		if err != nil {
			return EventMessage{}, err
		}
		sa, err := prefix.DeriveSelfAddressing(prefixCode, payload)
		if err != nil {
			return EventMessage{}, err
		}
		pre = prefix.NewIdentifierSelfAddressing(sa)
	}

	return Event{Prefix: pre, Sn: 0, Data: data}.Serialize(format)
}

// Serialize renders e as an EventMessage under format, running the
// version-string two-pass size-fixing procedure from spec.md §4.2.
func (e Event) Serialize(format Format) (EventMessage, error) {
	w, err := e.toWire()
	if err != nil {
		return EventMessage{}, err
	}
	var vs serialization.VersionString
	raw, err := serialization.EncodeSized(format,
		func(s string) {
			w.Vs = s
			vs, _ = serialization.Parse(s)
		},
		func() ([]byte, error) { return serialization.Marshal(format, w) })
	if err != nil {
		return EventMessage{}, err
	}
	return EventMessage{VS: vs, Event: e, Raw: raw}, nil
}

// UnmarshalEventMessage decodes raw as an event message under format. The
// parser package is responsible for detecting format and for locating the
// byte range of one message inside a larger KEL stream; this is the
// single-message entry point it calls once that range is known.
func UnmarshalEventMessage(format Format, raw []byte) (EventMessage, error) {
	var w wireEvent
	if err := serialization.Unmarshal(format, raw, &w); err != nil {
		return EventMessage{}, err
	}
	vs, err := serialization.Parse(w.Vs)
	if err != nil {
		return EventMessage{}, err
	}
	ev, err := w.fromWire()
	if err != nil {
		return EventMessage{}, err
	}
	return EventMessage{VS: vs, Event: ev, Raw: raw}, nil
}

// VerifyInceptionBinding checks that m's Event.Prefix is genuinely derived
// from its inception payload, per spec.md §4.4's inception binding check.
// SelfSigning identifiers are reserved by spec.md and are not verifiable
// here; see DESIGN.md.
func (m EventMessage) VerifyInceptionBinding() (bool, error) {
	switch m.Event.Prefix.Kind() {
	case prefix.IdentifierBasic:
		kc, ok := keyConfigOf(m.Event.Data)
		if !ok {
			return false, kerierr.Semantic("event: basic-prefix binding check requires an inception event")
		}
		if len(kc.PublicKeys) != 1 {
			return false, kerierr.Semantic("event: basic-derived identifier requires exactly one public key")
		}
		return kc.PublicKeys[0].Equal(m.Event.Prefix.Basic()), nil
	case prefix.IdentifierSelfAddressing:
		sa := m.Event.Prefix.SelfAddressingDigest()
		payload, err := getInceptionData(m.VS.Fmt, m.Event.Data, sa.Code())
		if err != nil {
			return false, err
		}
		return sa.VerifyBinding(payload), nil
	case prefix.IdentifierSelfSigning:
		return false, kerierr.Semantic("event: self-signing identifier binding is reserved and not implemented")
	default:
		return false, kerierr.Semantic("event: cannot verify binding of an uninitialized identifier")
	}
}

// Apply folds m onto s: Event.Apply performs the semantic transition, and
// Last is set to m's exact raw bytes on success.
func (m EventMessage) Apply(s state.IdentifierState) (state.IdentifierState, error) {
	next, err := m.Event.Apply(s)
	if err != nil {
		return state.IdentifierState{}, err
	}
	next.Last = m.Raw
	return next, nil
}
