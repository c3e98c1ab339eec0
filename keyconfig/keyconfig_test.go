// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keyconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/toole-brendan/keri/derivation"
	"github.com/toole-brendan/keri/internal/testkeys"
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/prefix"
)

func TestVerifyThreshold(t *testing.T) {
	keys := testkeys.Gen(1, 3)
	kc := KeyConfig{Threshold: 2, PublicKeys: testkeys.Basics(keys)}
	msg := []byte("icp event bytes")

	oneSig := []prefix.AttachedSignature{keys[0].Sign(msg, 0)}
	err := kc.Verify(msg, oneSig)
	require.True(t, kerierr.Is(err, kerierr.ErrNotEnoughSigs))

	twoSigs := []prefix.AttachedSignature{keys[0].Sign(msg, 0), keys[1].Sign(msg, 1)}
	require.NoError(t, kc.Verify(msg, twoSigs))
}

func TestVerifyRejectsDuplicateIndex(t *testing.T) {
	keys := testkeys.Gen(2, 2)
	kc := KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(keys)}
	msg := []byte("m")

	sigs := []prefix.AttachedSignature{keys[0].Sign(msg, 0), keys[0].Sign(msg, 0)}
	err := kc.Verify(msg, sigs)
	require.True(t, kerierr.Is(err, kerierr.ErrSemantic))
}

func TestVerifyRejectsInvalidSignature(t *testing.T) {
	keys := testkeys.Gen(3, 2)
	kc := KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(keys)}

	sig := keys[0].Sign([]byte("original"), 0)
	err := kc.Verify([]byte("different message"), []prefix.AttachedSignature{sig})
	require.True(t, kerierr.Is(err, kerierr.ErrSemantic))
}

func TestValidateThresholdRange(t *testing.T) {
	keys := testkeys.Basics(testkeys.Gen(4, 2))
	require.NoError(t, KeyConfig{Threshold: 1, PublicKeys: keys}.Validate())
	require.NoError(t, KeyConfig{Threshold: 2, PublicKeys: keys}.Validate())
	require.Error(t, KeyConfig{Threshold: 0, PublicKeys: keys}.Validate())
	require.Error(t, KeyConfig{Threshold: 3, PublicKeys: keys}.Validate())
}

func TestCommitVerifyNext(t *testing.T) {
	next := testkeys.Gen(5, 1)
	nextKeys := testkeys.Basics(next)
	nxt, err := NxtCommitment(1, nextKeys, derivation.CodeSHA2_256)
	require.NoError(t, err)

	current := KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(testkeys.Gen(6, 1)), NextKeyDigest: nxt}
	proposedNext := KeyConfig{Threshold: 1, PublicKeys: nextKeys}
	require.True(t, current.VerifyNext(proposedNext))

	wrongNext := KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(testkeys.Gen(7, 1))}
	require.False(t, current.VerifyNext(wrongNext))
}

// TestXORFoldCommutative is the spec's "XOR-fold commutativity absent
// duplicates" property: commit(t, [k1,k2], h) == commit(t, [k2,k1], h).
func TestXORFoldCommutative(t *testing.T) {
	keys := testkeys.Basics(testkeys.Gen(8, 2))
	a, err := NxtCommitment(1, []prefix.Basic{keys[0], keys[1]}, derivation.CodeSHA2_256)
	require.NoError(t, err)
	b, err := NxtCommitment(1, []prefix.Basic{keys[1], keys[0]}, derivation.CodeSHA2_256)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}

func TestXORFoldCommutativeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		seed := byte(rapid.IntRange(0, 255).Draw(rt, "seed"))
		keys := testkeys.Basics(testkeys.Gen(seed, n))
		threshold := uint64(rapid.IntRange(1, n).Draw(rt, "threshold"))

		forward, err := NxtCommitment(threshold, keys, derivation.CodeSHA2_256)
		require.NoError(rt, err)

		reversed := make([]prefix.Basic, len(keys))
		for i, k := range keys {
			reversed[len(keys)-1-i] = k
		}
		backward, err := NxtCommitment(threshold, reversed, derivation.CodeSHA2_256)
		require.NoError(rt, err)

		require.True(rt, forward.Equal(backward))
	})
}
