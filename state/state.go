// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package state defines IdentifierState, the per-identifier snapshot from
// spec.md §3, and the apply fold event semantics mutate. It plays the role
// blockchain.ShellChainState plays for UTXO/channel state in the teacher
// repo: a plain data snapshot, recomputed on demand from the log rather
// than kept as the source of truth.
package state

import (
	"github.com/toole-brendan/keri/keyconfig"
	"github.com/toole-brendan/keri/prefix"
)

// IdentifierState is the per-identifier snapshot from spec.md §3.
//
// Invariant after any successful apply: Sn equals the sequence number of
// the event whose bytes are in Last; after a rotation, Current's threshold
// and keys match the next-key digest the previous establishment event
// pre-committed to.
type IdentifierState struct {
	Prefix prefix.IdentifierPrefix
	Sn     uint64
	// Last holds the raw bytes of the last applied event message, stored
	// and digested verbatim rather than a re-encoded form: decoding does
	// not guarantee field-order round trip (spec.md §9 "Non-deterministic
	// serialization").
	Last []byte

	Current keyconfig.KeyConfig

	Witnesses []prefix.Basic
	Tally     uint64

	DelegatedKeys []prefix.IdentifierPrefix
	Delegator     *prefix.IdentifierPrefix
}

// New returns the zero-value (uninitialized) IdentifierState: no Icp has
// been applied yet, per spec.md §3's Lifecycle note ("State is created by
// Icp (sn = 0)").
func New() IdentifierState {
	return IdentifierState{}
}

// IsDefault reports whether this is the uninitialized zero-value state,
// the pre-check spec.md §4.4 requires for admitting an Icp.
func (s IdentifierState) IsDefault() bool {
	return s.Prefix.IsDefault() && s.Sn == 0 && len(s.Last) == 0
}
