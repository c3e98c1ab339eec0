// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/keri/derivation"
	"github.com/toole-brendan/keri/internal/testkeys"
	"github.com/toole-brendan/keri/keyconfig"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/state"
)

// TestSingleSigInceptionThenInteraction covers a single-sig Basic
// inception followed by an interaction event, checking Sn progresses
// 0 -> 1 and the interaction's prior-event-hash binds the inception's
// raw bytes.
func TestSingleSigInceptionThenInteraction(t *testing.T) {
	keys := testkeys.Gen(10, 1)
	kc := keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(keys)}
	icp := Icp{KeyConfig: kc, WitnessConfig: InceptionWitnessConfig{}}

	icpMsg, err := NewInceptionMessage(JSON, icp, "")
	require.NoError(t, err)

	s := state.New()
	s, err = icpMsg.Apply(s)
	require.NoError(t, err)
	require.Equal(t, uint64(0), s.Sn)
	require.Equal(t, icpMsg.Raw, s.Last)

	priorHash, err := prefix.DeriveSelfAddressing(derivation.CodeSHA2_256, icpMsg.Raw)
	require.NoError(t, err)

	ixn := Ixn{PreviousEventHash: priorHash}
	ixnEvent := Event{Prefix: icpMsg.Event.Prefix, Sn: 1, Data: ixn}
	ixnMsg, err := ixnEvent.Serialize(JSON)
	require.NoError(t, err)

	s, err = ixnMsg.Apply(s)
	require.NoError(t, err)
	require.Equal(t, uint64(1), s.Sn)
	require.Equal(t, ixnMsg.Raw, s.Last)
}

// TestRotationWithPreRotatedKeys covers rotation with a pre-committed
// next-key digest: the matching rotation key config is accepted, and a
// rotation proposing a different key config is rejected.
func TestRotationWithPreRotatedKeys(t *testing.T) {
	current := testkeys.Gen(11, 1)
	next := testkeys.Gen(12, 1)
	other := testkeys.Gen(13, 1)

	nxt, err := keyconfig.NxtCommitment(1, testkeys.Basics(next), derivation.CodeSHA2_256)
	require.NoError(t, err)

	icp := Icp{KeyConfig: keyconfig.KeyConfig{
		Threshold:     1,
		PublicKeys:    testkeys.Basics(current),
		NextKeyDigest: nxt,
	}}
	icpMsg, err := NewInceptionMessage(JSON, icp, "")
	require.NoError(t, err)

	s := state.New()
	s, err = icpMsg.Apply(s)
	require.NoError(t, err)

	priorHash, err := prefix.DeriveSelfAddressing(derivation.CodeSHA2_256, icpMsg.Raw)
	require.NoError(t, err)

	matchingRot := Rot{
		PreviousEventHash: priorHash,
		KeyConfig:         keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(next)},
	}
	rotEvent := Event{Prefix: icpMsg.Event.Prefix, Sn: 1, Data: matchingRot}
	rotMsg, err := rotEvent.Serialize(JSON)
	require.NoError(t, err)

	next2, err := rotMsg.Apply(s)
	require.NoError(t, err)
	require.Equal(t, uint64(1), next2.Sn)

	mismatchedRot := Rot{
		PreviousEventHash: priorHash,
		KeyConfig:         keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(other)},
	}
	badRotEvent := Event{Prefix: icpMsg.Event.Prefix, Sn: 1, Data: mismatchedRot}
	badRotMsg, err := badRotEvent.Serialize(JSON)
	require.NoError(t, err)

	_, err = badRotMsg.Apply(s)
	require.Error(t, err)
}

// TestInceptionBindingRejectsMismatchedBasicKeys covers a Basic identifier
// minted from one key but whose inception payload lists two keys: the
// prefix cannot match a single public key, so binding verification fails.
func TestInceptionBindingRejectsMismatchedBasicKeys(t *testing.T) {
	keys := testkeys.Gen(14, 2)
	solo := keys[0].Basic()
	pre := prefix.NewIdentifierBasic(solo)

	icp := Icp{KeyConfig: keyconfig.KeyConfig{Threshold: 2, PublicKeys: testkeys.Basics(keys)}}
	icpEvent := Event{Prefix: pre, Sn: 0, Data: icp}
	icpMsg, err := icpEvent.Serialize(JSON)
	require.NoError(t, err)

	ok, err := icpMsg.VerifyInceptionBinding()
	require.Error(t, err)
	require.False(t, ok)
}
