// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package event implements the KERI event model: the typed Icp/Rot/Ixn/
// Dip/Drt variants, their per-variant semantic application to
// IdentifierState (spec.md §4.4), and the EventMessage/SignedEventMessage/
// Receipt wire shapes (spec.md §3-4.2). Variant dispatch is a tagged union
// with a shared applyPayload(state) contract, the same shape as
// blockchain.ShellChainState's typed state mutation in the teacher repo,
// generalized from UTXO/channel state to KERI identifier state.
package event

import "github.com/toole-brendan/keri/prefix"

// Seal anchors one log's event to another: a (prefix, digest) reference,
// per spec.md's glossary entry for Seal. It appears both as an opaque
// anchor inside Ixn.Data and as the validator-log anchor in a transferable
// receipt.
type Seal struct {
	Prefix prefix.IdentifierPrefix
	Digest prefix.SelfAddressing
}

// sealWire is the wire-level shape of a Seal: {"pre":..., "dig":...}.
type sealWire struct {
	Pre string `json:"pre" cbor:"pre"`
	Dig string `json:"dig" cbor:"dig"`
}

func (s Seal) toWire() sealWire {
	return sealWire{Pre: s.Prefix.String(), Dig: s.Digest.String()}
}

func (w sealWire) toSeal() (Seal, error) {
	pre, err := prefix.ParseIdentifier(w.Pre)
	if err != nil {
		return Seal{}, err
	}
	dig, err := prefix.ParseSelfAddressing(w.Dig)
	if err != nil {
		return Seal{}, err
	}
	return Seal{Prefix: pre, Digest: dig}, nil
}
