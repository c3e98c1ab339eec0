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

// Drt is the delegated rotation event payload from spec.md §4.4: a Rot
// that requires the identifier to already be under delegation (i.e.
// state.Delegator must have been set by the identifier's Dip). Delegated
// rotations do not change who the delegator is, so no delegator field is
// carried here. As for Dip, no check that the delegator's log anchors
// this rotation is made here or in processor.Processor.
type Drt struct {
	PreviousEventHash prefix.SelfAddressing
	KeyConfig         keyconfig.KeyConfig
	WitnessConfig     RotationWitnessConfig
	Data              []Seal
}

// Ilk implements EventData.
func (Drt) Ilk() Ilk { return IlkDrt }

// applyPayload requires an established delegation, then applies the same
// effect sequence as Rot.
func (e Drt) applyPayload(s state.IdentifierState) (state.IdentifierState, error) {
	if s.Delegator == nil {
		return state.IdentifierState{}, kerierr.Semantic("event: delegated rotation on a non-delegated identifier")
	}
	asRot := Rot{
		PreviousEventHash: e.PreviousEventHash,
		KeyConfig:         e.KeyConfig,
		WitnessConfig:     e.WitnessConfig,
		Data:              e.Data,
	}
	return asRot.applyPayload(s)
}
