// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/prefix"
)

// InceptionWitnessConfig is the witness section of an Icp/Dip event:
// a receipt tally threshold and the initial witness list, wire fields
// "toad"/"wits" per spec.md §4.2.
type InceptionWitnessConfig struct {
	Tally            uint64
	InitialWitnesses []prefix.Basic
}

// RotationWitnessConfig is the witness section of a Rot/Drt event: a
// tally, and the witnesses to remove ("cuts") and add ("adds").
type RotationWitnessConfig struct {
	Tally uint64
	Cuts  []prefix.Basic
	Adds  []prefix.Basic
}

// ApplyTo folds cuts then adds onto the current witness list, per
// spec.md §4.4 rotation effect sequence step 3: cuts must currently be
// present, adds must not already be present.
func (w RotationWitnessConfig) ApplyTo(current []prefix.Basic) ([]prefix.Basic, error) {
	next := make([]prefix.Basic, 0, len(current))
	cutSet := make(map[string]bool, len(w.Cuts))
	for _, c := range w.Cuts {
		cutSet[c.String()] = true
	}
	present := make(map[string]bool, len(current))
	for _, w := range current {
		present[w.String()] = true
	}
	for _, c := range w.Cuts {
		if !present[c.String()] {
			return nil, kerierr.Semantic("event: cut references absent witness %s", c.String())
		}
	}
	for _, cur := range current {
		if !cutSet[cur.String()] {
			next = append(next, cur)
		}
	}
	for _, a := range w.Adds {
		if present[a.String()] {
			return nil, kerierr.Semantic("event: add references already-present witness %s", a.String())
		}
		present[a.String()] = true
		next = append(next, a)
	}
	return next, nil
}
