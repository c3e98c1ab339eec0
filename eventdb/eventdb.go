// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package eventdb defines the storage contract key event processing runs
// against (spec.md §6) and a concrete implementation over goleveldb. It
// plays the role blockchain's chain-state database plays in the teacher
// repo: events are appended once, never mutated, and state is recomputed
// by folding the log rather than trusted as a cached value.
package eventdb

import (
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/state"
)

// EscrowKind names one of the four escrow classes spec.md §4.6 defines.
type EscrowKind string

const (
	// EscrowOutOfOrder holds events whose sn exceeds state.sn+1, pending
	// arrival of the missing intervening events.
	EscrowOutOfOrder EscrowKind = "oo"
	// EscrowPartialSig holds otherwise-valid events that did not carry
	// enough signatures to meet the active threshold.
	EscrowPartialSig EscrowKind = "ps"
	// EscrowNTReceipt holds non-transferable receipts for events not yet
	// logged.
	EscrowNTReceipt EscrowKind = "ntr"
	// EscrowTReceipt holds transferable receipts whose receipted event,
	// or whose sealed validator event, is not yet logged.
	EscrowTReceipt EscrowKind = "tr"
)

// EventDB is the storage contract spec.md §6 describes: an append-only
// key event log per identifier prefix, plus four escrow classes keyed the
// same way. Implementations store exact raw message bytes; no method
// here re-encodes or re-derives what the caller handed it.
type EventDB interface {
	// EventAt returns the raw bytes of the event logged for prefix at sn,
	// or found=false if none is logged there.
	EventAt(prefix string, sn uint64) (raw []byte, found bool, err error)

	// LastEventAtSn returns the highest sn logged for prefix and its raw
	// bytes, or found=false if prefix has no logged events at all.
	LastEventAtSn(prefix string) (sn uint64, raw []byte, found bool, err error)

	// AppendEvent commits raw as the event logged for prefix at sn,
	// together with the attached signatures that admitted it, per
	// spec.md §6's append_event(prefix, sn, raw_bytes, signatures). The
	// caller has already verified sn is the correct next sequence number;
	// AppendEvent does not re-check ordering.
	AppendEvent(prefix string, sn uint64, raw []byte, sigs []prefix.AttachedSignature) error

	// Signatures returns the attached signatures stored for prefix at sn.
	Signatures(prefix string, sn uint64) (sigs []prefix.AttachedSignature, found bool, err error)

	// ComputeState folds every event logged for prefix, in sn order, into
	// the resulting IdentifierState, per spec.md §3's "state is
	// recomputed from the log" discipline.
	ComputeState(prefix string) (state.IdentifierState, error)

	// EscrowOutOfOrder, EscrowPartialSig, EscrowNTReceipt, and
	// EscrowTReceipt each hold exactly one raw blob per (prefix, sn),
	// overwriting any previous entry of the same kind — re-escrowing the
	// same event with more signatures replaces the slot rather than
	// accumulating one, per original_source's partial-signature escrow
	// behavior (see DESIGN.md).
	EscrowOutOfOrder(prefix string, sn uint64, raw []byte) error
	EscrowPartialSig(prefix string, sn uint64, raw []byte) error
	EscrowNTReceipt(prefix string, sn uint64, raw []byte) error
	EscrowTReceipt(prefix string, sn uint64, raw []byte) error

	// TakeEscrowAt removes and returns the raw blob escrowed under kind
	// for (prefix, sn), or found=false if nothing is escrowed there.
	TakeEscrowAt(kind EscrowKind, prefix string, sn uint64) (raw []byte, found bool, err error)

	// Close releases the underlying storage handle.
	Close() error
}

// Fold computes an IdentifierState by calling eventAt for sn = 0, 1, 2,
// ... until it reports not-found, applying each event's raw bytes in
// turn. apply performs the actual decode-and-transition step (provided by
// the caller so eventdb need not import the event package's wire codec).
func Fold(
	eventAt func(sn uint64) (raw []byte, found bool, err error),
	apply func(s state.IdentifierState, raw []byte) (state.IdentifierState, error),
) (state.IdentifierState, error) {
	s := state.New()
	for sn := uint64(0); ; sn++ {
		raw, found, err := eventAt(sn)
		if err != nil {
			return state.IdentifierState{}, err
		}
		if !found {
			return s, nil
		}
		s, err = apply(s, raw)
		if err != nil {
			return state.IdentifierState{}, kerierr.Semantic("eventdb: folding sn %d: %v", sn, err)
		}
	}
}
