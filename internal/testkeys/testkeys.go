// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package testkeys generates deterministic Ed25519 keypairs and attached
// signatures for tests across the module, so every package's test suite
// builds event fixtures the same way instead of each hand-rolling its own
// key plumbing.
package testkeys

import (
	"crypto/ed25519"

	"github.com/toole-brendan/keri/derivation"
	"github.com/toole-brendan/keri/prefix"
)

// Keypair is one Ed25519 signing identity usable as a KERI basic key.
type Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Gen deterministically derives n keypairs from seed, so tests are
// reproducible without depending on crypto/rand.
func Gen(seed byte, n int) []Keypair {
	out := make([]Keypair, n)
	for i := 0; i < n; i++ {
		var raw [ed25519.SeedSize]byte
		raw[0] = seed
		raw[1] = byte(i)
		priv := ed25519.NewKeyFromSeed(raw[:])
		out[i] = Keypair{Public: priv.Public().(ed25519.PublicKey), Private: priv}
	}
	return out
}

// Basic renders the keypair's public half as a transferable Basic prefix.
func (k Keypair) Basic() prefix.Basic {
	b, err := prefix.NewBasic(derivation.CodeEd25519, k.Public)
	if err != nil {
		panic(err)
	}
	return b
}

// Sign produces an AttachedSignature over msg at the given signing-key
// index.
func (k Keypair) Sign(msg []byte, index uint16) prefix.AttachedSignature {
	sig := ed25519.Sign(k.Private, msg)
	a, err := prefix.NewAttachedSignature(derivation.CodeEd25519Sig, index, sig)
	if err != nil {
		panic(err)
	}
	return a
}

// Basics renders every keypair's public half as a Basic prefix, in order.
func Basics(keys []Keypair) []prefix.Basic {
	out := make([]prefix.Basic, len(keys))
	for i, k := range keys {
		out[i] = k.Basic()
	}
	return out
}
