// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import "github.com/toole-brendan/keri/state"

// Ilk identifies an event's variant by its wire-level type tag.
type Ilk string

const (
	IlkIcp Ilk = "icp"
	IlkRot Ilk = "rot"
	IlkIxn Ilk = "ixn"
	IlkDip Ilk = "dip"
	IlkDrt Ilk = "drt"
	IlkVrc Ilk = "vrc"
	IlkRct Ilk = "rct"
)

// EventData is the tagged union of per-variant event payloads from
// spec.md §3-4.4: Icp, Rot, Ixn, Dip, Drt. Each variant implements the
// semantic effect of applying itself onto a given IdentifierState; general
// prefix/sn pre-checks are applied once by Event.Apply before dispatch, not
// repeated per variant.
type EventData interface {
	// Ilk returns this variant's wire type tag.
	Ilk() Ilk

	// applyPayload performs the variant-specific state mutation, after
	// Event.Apply has already validated sn/prefix pre-conditions.
	applyPayload(s state.IdentifierState) (state.IdentifierState, error)
}
