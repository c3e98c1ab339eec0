// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/state"
)

// Event is (prefix, sn, data) from spec.md §3: an identifier, a sequence
// number, and the type-specific payload.
type Event struct {
	Prefix prefix.IdentifierPrefix
	Sn     uint64
	Data   EventData
}

// Apply performs the general pre-checks from spec.md §4.4 and then
// dispatches to the variant's own effect:
//   - Icp requires the prior state to be empty (default prefix, sn==0),
//   - any other event requires event.prefix == state.prefix and
//     event.sn == state.sn+1, else EventOutOfOrderError (sn too high) or
//     EventDuplicateError (sn <= state.sn).
//
// Apply does not update state.Last; the caller (EventMessage.Apply) sets
// Last to the exact raw bytes of the message being applied, preserving the
// "store raw bytes, never a re-encoded form" discipline from spec.md §9.
func (e Event) Apply(s state.IdentifierState) (state.IdentifierState, error) {
	if _, isIcp := e.Data.(Icp); isIcp {
		if !s.IsDefault() {
			return state.IdentifierState{}, kerierr.Semantic("event: inception on a non-empty identifier state")
		}
		if e.Sn != 0 {
			return state.IdentifierState{}, kerierr.Semantic("event: inception sn must be 0, got %d", e.Sn)
		}
	} else if _, isDip := e.Data.(Dip); isDip {
		if !s.IsDefault() {
			return state.IdentifierState{}, kerierr.Semantic("event: delegated inception on a non-empty identifier state")
		}
		if e.Sn != 0 {
			return state.IdentifierState{}, kerierr.Semantic("event: delegated inception sn must be 0, got %d", e.Sn)
		}
	} else {
		if !e.Prefix.Equal(s.Prefix) {
			return state.IdentifierState{}, kerierr.Semantic("event: prefix does not match identifier state")
		}
		if e.Sn > s.Sn+1 {
			return state.IdentifierState{}, kerierr.OutOfOrder("event: sn %d exceeds expected %d", e.Sn, s.Sn+1)
		}
		if e.Sn <= s.Sn {
			return state.IdentifierState{}, kerierr.Duplicate("event: sn %d already logged (at sn %d)", e.Sn, s.Sn)
		}
	}

	next, err := e.Data.applyPayload(s)
	if err != nil {
		return state.IdentifierState{}, err
	}
	next.Prefix = e.Prefix
	next.Sn = e.Sn
	return next, nil
}
