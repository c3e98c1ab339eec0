// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/keyconfig"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/state"
)

// Rot is the rotation event payload from spec.md §4.4.
type Rot struct {
	PreviousEventHash prefix.SelfAddressing
	KeyConfig         keyconfig.KeyConfig
	WitnessConfig     RotationWitnessConfig
	Data              []Seal
}

// Ilk implements EventData.
func (Rot) Ilk() Ilk { return IlkRot }

// applyPayload implements the rotation effect sequence from spec.md §4.4:
//  1. verify PreviousEventHash binds state.Last,
//  2. verify state.Current commits to the new KeyConfig,
//  3. apply cuts then adds to the witness list, update tally,
//  4. install the new KeyConfig.
func (e Rot) applyPayload(s state.IdentifierState) (state.IdentifierState, error) {
	if !e.PreviousEventHash.VerifyBinding(s.Last) {
		return state.IdentifierState{}, kerierr.Semantic("event: previous-event-hash does not match last logged event")
	}
	if !s.Current.VerifyNext(e.KeyConfig) {
		return state.IdentifierState{}, kerierr.Semantic("event: new key config does not match pre-committed next-key digest")
	}
	newWitnesses, err := e.WitnessConfig.ApplyTo(s.Witnesses)
	if err != nil {
		return state.IdentifierState{}, err
	}
	s.Witnesses = newWitnesses
	s.Tally = e.WitnessConfig.Tally
	s.Current = e.KeyConfig
	return s, nil
}
