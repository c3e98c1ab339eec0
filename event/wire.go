// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/keyconfig"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/serialization"
)

// wireEvent is the flat, fixed-field-name wire shape every event message
// marshals through, per the field naming table in spec.md §4.2; receipts
// use their own rctWire and vrcWire shapes (receipt.go). Go has no direct equivalent of a serde internally-tagged enum with
// #[serde(flatten)], so one struct carries every possible field and
// toWire/fromWire translate to and from the typed Event/EventData union.
type wireEvent struct {
	Vs   string                    `json:"vs" cbor:"vs"`
	Pre  string                    `json:"pre" cbor:"pre"`
	Sn   serialization.HexCompact  `json:"sn" cbor:"sn"`
	Ilk  string                    `json:"ilk" cbor:"ilk"`
	Sith *serialization.HexCompact `json:"sith,omitempty" cbor:"sith,omitempty"`
	Keys []string                  `json:"keys,omitempty" cbor:"keys,omitempty"`
	Nxt  string                    `json:"nxt,omitempty" cbor:"nxt,omitempty"`
	Toad *serialization.HexCompact `json:"toad,omitempty" cbor:"toad,omitempty"`
	Wits []string                  `json:"wits,omitempty" cbor:"wits,omitempty"`
	Cuts []string                  `json:"cuts,omitempty" cbor:"cuts,omitempty"`
	Adds []string                  `json:"adds,omitempty" cbor:"adds,omitempty"`
	Cnfg []string                  `json:"cnfg,omitempty" cbor:"cnfg,omitempty"`
	Dig  string                    `json:"dig,omitempty" cbor:"dig,omitempty"`
	Data []sealWire                `json:"data,omitempty" cbor:"data,omitempty"`
	Seal *sealWire                 `json:"seal,omitempty" cbor:"seal,omitempty"`
	// Di is the delegator's identifier prefix, carried by dip/drt events.
	// Not one of the fields spec.md §4.2 enumerates by name, but required
	// to express the "delegator: IdentifierPrefix" payload field spec.md
	// §4.4 describes for Dip/Drt; see DESIGN.md.
	Di string `json:"di,omitempty" cbor:"di,omitempty"`
}

func encodeKeys(keys []prefix.Basic) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func parseKeys(strs []string) ([]prefix.Basic, error) {
	out := make([]prefix.Basic, len(strs))
	for i, s := range strs {
		b, err := prefix.ParseBasic(s)
		if err != nil {
			return nil, kerierr.Semantic("event: bad key %q: %v", s, err)
		}
		out[i] = b
	}
	return out, nil
}

func sealsToWire(seals []Seal) []sealWire {
	out := make([]sealWire, len(seals))
	for i, s := range seals {
		out[i] = s.toWire()
	}
	return out
}

func sealsFromWire(wires []sealWire) ([]Seal, error) {
	out := make([]Seal, len(wires))
	for i, w := range wires {
		s, err := w.toSeal()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// toWire renders an Event as its flat wire representation, with Vs left
// blank for the caller (Event.Serialize) to fill via the two-pass
// size-fixing procedure.
func (e Event) toWire() (wireEvent, error) {
	w := wireEvent{Pre: e.Prefix.String(), Sn: serialization.HexCompact(e.Sn), Ilk: string(e.Data.Ilk())}
	switch d := e.Data.(type) {
	case Icp:
		sith := serialization.HexCompact(d.KeyConfig.Threshold)
		toad := serialization.HexCompact(d.WitnessConfig.Tally)
		w.Sith = &sith
		w.Keys = encodeKeys(d.KeyConfig.PublicKeys)
		w.Nxt = d.KeyConfig.NextKeyDigest.String()
		w.Toad = &toad
		w.Wits = encodeKeys(d.WitnessConfig.InitialWitnesses)
		w.Cnfg = d.Configuration
	case Dip:
		sith := serialization.HexCompact(d.KeyConfig.Threshold)
		toad := serialization.HexCompact(d.WitnessConfig.Tally)
		w.Sith = &sith
		w.Keys = encodeKeys(d.KeyConfig.PublicKeys)
		w.Nxt = d.KeyConfig.NextKeyDigest.String()
		w.Toad = &toad
		w.Wits = encodeKeys(d.WitnessConfig.InitialWitnesses)
		w.Cnfg = d.Configuration
		w.Di = d.Delegator.String()
	case Rot:
		sith := serialization.HexCompact(d.KeyConfig.Threshold)
		toad := serialization.HexCompact(d.WitnessConfig.Tally)
		w.Dig = d.PreviousEventHash.String()
		w.Sith = &sith
		w.Keys = encodeKeys(d.KeyConfig.PublicKeys)
		w.Nxt = d.KeyConfig.NextKeyDigest.String()
		w.Toad = &toad
		w.Cuts = encodeKeys(d.WitnessConfig.Cuts)
		w.Adds = encodeKeys(d.WitnessConfig.Adds)
		w.Data = sealsToWire(d.Data)
	case Drt:
		sith := serialization.HexCompact(d.KeyConfig.Threshold)
		toad := serialization.HexCompact(d.WitnessConfig.Tally)
		w.Dig = d.PreviousEventHash.String()
		w.Sith = &sith
		w.Keys = encodeKeys(d.KeyConfig.PublicKeys)
		w.Nxt = d.KeyConfig.NextKeyDigest.String()
		w.Toad = &toad
		w.Cuts = encodeKeys(d.WitnessConfig.Cuts)
		w.Adds = encodeKeys(d.WitnessConfig.Adds)
		w.Data = sealsToWire(d.Data)
	case Ixn:
		w.Dig = d.PreviousEventHash.String()
		w.Data = sealsToWire(d.Data)
	default:
		return wireEvent{}, kerierr.Semantic("event: unknown event data type %T", e.Data)
	}
	return w, nil
}

// fromWire reconstructs a typed Event from its flat wire representation.
func (w wireEvent) fromWire() (Event, error) {
	pre, err := prefix.ParseIdentifier(w.Pre)
	if err != nil {
		return Event{}, kerierr.Semantic("event: bad pre %q: %v", w.Pre, err)
	}
	ev := Event{Prefix: pre, Sn: uint64(w.Sn)}

	thresholdOf := func() uint64 {
		if w.Sith == nil {
			return 0
		}
		return uint64(*w.Sith)
	}
	toadOf := func() uint64 {
		if w.Toad == nil {
			return 0
		}
		return uint64(*w.Toad)
	}

	switch Ilk(w.Ilk) {
	case IlkIcp, IlkDip:
		keys, err := parseKeys(w.Keys)
		if err != nil {
			return Event{}, err
		}
		// An absent nxt is the zero digest, which toWire omits.
		var nxt prefix.SelfAddressing
		if w.Nxt != "" {
			if nxt, err = prefix.ParseSelfAddressing(w.Nxt); err != nil {
				return Event{}, kerierr.Semantic("event: bad nxt %q: %v", w.Nxt, err)
			}
		}
		wits, err := parseKeys(w.Wits)
		if err != nil {
			return Event{}, err
		}
		kc := keyconfig.KeyConfig{Threshold: thresholdOf(), PublicKeys: keys, NextKeyDigest: nxt}
		wc := InceptionWitnessConfig{Tally: toadOf(), InitialWitnesses: wits}
		if Ilk(w.Ilk) == IlkIcp {
			ev.Data = Icp{KeyConfig: kc, WitnessConfig: wc, Configuration: w.Cnfg}
		} else {
			delegator, err := prefix.ParseIdentifier(w.Di)
			if err != nil {
				return Event{}, kerierr.Semantic("event: bad di %q: %v", w.Di, err)
			}
			ev.Data = Dip{KeyConfig: kc, WitnessConfig: wc, Configuration: w.Cnfg, Delegator: delegator}
		}
	case IlkRot, IlkDrt:
		dig, err := prefix.ParseSelfAddressing(w.Dig)
		if err != nil {
			return Event{}, kerierr.Semantic("event: bad dig %q: %v", w.Dig, err)
		}
		keys, err := parseKeys(w.Keys)
		if err != nil {
			return Event{}, err
		}
		var nxt prefix.SelfAddressing
		if w.Nxt != "" {
			if nxt, err = prefix.ParseSelfAddressing(w.Nxt); err != nil {
				return Event{}, kerierr.Semantic("event: bad nxt %q: %v", w.Nxt, err)
			}
		}
		cuts, err := parseKeys(w.Cuts)
		if err != nil {
			return Event{}, err
		}
		adds, err := parseKeys(w.Adds)
		if err != nil {
			return Event{}, err
		}
		seals, err := sealsFromWire(w.Data)
		if err != nil {
			return Event{}, err
		}
		kc := keyconfig.KeyConfig{Threshold: thresholdOf(), PublicKeys: keys, NextKeyDigest: nxt}
		wc := RotationWitnessConfig{Tally: toadOf(), Cuts: cuts, Adds: adds}
		if Ilk(w.Ilk) == IlkRot {
			ev.Data = Rot{PreviousEventHash: dig, KeyConfig: kc, WitnessConfig: wc, Data: seals}
		} else {
			ev.Data = Drt{PreviousEventHash: dig, KeyConfig: kc, WitnessConfig: wc, Data: seals}
		}
	case IlkIxn:
		dig, err := prefix.ParseSelfAddressing(w.Dig)
		if err != nil {
			return Event{}, kerierr.Semantic("event: bad dig %q: %v", w.Dig, err)
		}
		seals, err := sealsFromWire(w.Data)
		if err != nil {
			return Event{}, err
		}
		ev.Data = Ixn{PreviousEventHash: dig, Data: seals}
	default:
		return Event{}, kerierr.Semantic("event: unknown ilk %q", w.Ilk)
	}
	return ev, nil
}
