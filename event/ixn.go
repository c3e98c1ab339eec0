// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/state"
)

// Ixn is the interaction event payload from spec.md §4.4: it anchors
// external data via seals without changing keys or witnesses.
type Ixn struct {
	PreviousEventHash prefix.SelfAddressing
	Data              []Seal
}

// Ilk implements EventData.
func (Ixn) Ilk() Ilk { return IlkIxn }

// applyPayload verifies the prior-event-hash binding; Data is opaque to the
// state machine and is not otherwise validated.
func (e Ixn) applyPayload(s state.IdentifierState) (state.IdentifierState, error) {
	if !e.PreviousEventHash.VerifyBinding(s.Last) {
		return state.IdentifierState{}, kerierr.Semantic("event: previous-event-hash does not match last logged event")
	}
	return s, nil
}
