// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package processor

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/keri/derivation"
	"github.com/toole-brendan/keri/event"
	"github.com/toole-brendan/keri/eventdb"
	"github.com/toole-brendan/keri/internal/testkeys"
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/keyconfig"
	"github.com/toole-brendan/keri/parser"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/state"
)

// memDB is an in-memory eventdb.EventDB test double, standing in for the
// goleveldb-backed implementation so these tests exercise the processor's
// own logic without touching disk.
type memDB struct {
	mu      sync.Mutex
	events  map[string][]byte
	sigs    map[string][]prefix.AttachedSignature
	escrows map[eventdb.EscrowKind]map[string][]byte
}

func newMemDB() *memDB {
	return &memDB{
		events: make(map[string][]byte),
		sigs:   make(map[string][]prefix.AttachedSignature),
		escrows: map[eventdb.EscrowKind]map[string][]byte{
			eventdb.EscrowOutOfOrder: make(map[string][]byte),
			eventdb.EscrowPartialSig: make(map[string][]byte),
			eventdb.EscrowNTReceipt:  make(map[string][]byte),
			eventdb.EscrowTReceipt:   make(map[string][]byte),
		},
	}
}

func snKey(p string, sn uint64) string {
	return fmt.Sprintf("%s/%d", p, sn)
}

func (m *memDB) EventAt(p string, sn uint64) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.events[snKey(p, sn)]
	return raw, ok, nil
}

func (m *memDB) LastEventAtSn(p string) (uint64, []byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sn uint64
	var raw []byte
	found := false
	for {
		v, ok := m.events[snKey(p, sn)]
		if !ok {
			break
		}
		raw = v
		found = true
		sn++
	}
	if !found {
		return 0, nil, false, nil
	}
	return sn - 1, raw, true, nil
}

func (m *memDB) AppendEvent(p string, sn uint64, raw []byte, sigs []prefix.AttachedSignature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[snKey(p, sn)] = raw
	m.sigs[snKey(p, sn)] = sigs
	return nil
}

func (m *memDB) Signatures(p string, sn uint64) ([]prefix.AttachedSignature, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sigs, ok := m.sigs[snKey(p, sn)]
	return sigs, ok, nil
}

func (m *memDB) ComputeState(p string) (state.IdentifierState, error) {
	return eventdb.Fold(
		func(sn uint64) ([]byte, bool, error) { return m.EventAt(p, sn) },
		func(s state.IdentifierState, raw []byte) (state.IdentifierState, error) {
			msg, _, _, err := parser.Message(raw)
			if err != nil {
				return state.IdentifierState{}, err
			}
			return msg.Apply(s)
		},
	)
}

func (m *memDB) escrow(kind eventdb.EscrowKind, p string, sn uint64, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.escrows[kind][snKey(p, sn)] = raw
	return nil
}

func (m *memDB) EscrowOutOfOrder(p string, sn uint64, raw []byte) error {
	return m.escrow(eventdb.EscrowOutOfOrder, p, sn, raw)
}
func (m *memDB) EscrowPartialSig(p string, sn uint64, raw []byte) error {
	return m.escrow(eventdb.EscrowPartialSig, p, sn, raw)
}
func (m *memDB) EscrowNTReceipt(p string, sn uint64, raw []byte) error {
	return m.escrow(eventdb.EscrowNTReceipt, p, sn, raw)
}
func (m *memDB) EscrowTReceipt(p string, sn uint64, raw []byte) error {
	return m.escrow(eventdb.EscrowTReceipt, p, sn, raw)
}

func (m *memDB) TakeEscrowAt(kind eventdb.EscrowKind, p string, sn uint64) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := snKey(p, sn)
	raw, ok := m.escrows[kind][key]
	if ok {
		delete(m.escrows[kind], key)
	}
	return raw, ok, nil
}

func (m *memDB) Close() error { return nil }

var _ eventdb.EventDB = (*memDB)(nil)

func signedRaw(msg event.EventMessage, sigs []prefix.AttachedSignature) []byte {
	return msg.Sign(sigs).Serialize()
}

// TestMultisigInceptionPartialThenComplete covers a multisig
// SelfAddressing inception with 3 keys, threshold 2: one signature
// escrows for lack of threshold, and adding the second commits it.
func TestMultisigInceptionPartialThenComplete(t *testing.T) {
	db := newMemDB()
	p := New(db)

	keys := testkeys.Gen(20, 3)
	kc := keyconfig.KeyConfig{Threshold: 2, PublicKeys: testkeys.Basics(keys)}
	icp := event.Icp{KeyConfig: kc}
	icpMsg, err := event.NewInceptionMessage(event.JSON, icp, derivation.CodeSHA2_256)
	require.NoError(t, err)
	prefixStr := icpMsg.Event.Prefix.String()

	oneSig := []prefix.AttachedSignature{keys[0].Sign(icpMsg.Raw, 0)}
	err = p.Process(signedRaw(icpMsg, oneSig))
	require.Error(t, err)
	require.True(t, kerierr.Is(err, kerierr.ErrNotEnoughSigs))

	_, found, err := db.EventAt(prefixStr, 0)
	require.NoError(t, err)
	require.False(t, found)
	_, escrowed, err := db.TakeEscrowAt(eventdb.EscrowPartialSig, prefixStr, 0)
	require.NoError(t, err)
	require.True(t, escrowed)

	twoSigs := []prefix.AttachedSignature{keys[0].Sign(icpMsg.Raw, 0), keys[1].Sign(icpMsg.Raw, 1)}
	err = p.Process(signedRaw(icpMsg, twoSigs))
	require.NoError(t, err)

	s, err := db.ComputeState(prefixStr)
	require.NoError(t, err)
	require.Equal(t, uint64(0), s.Sn)
}

// TestDuplicateRotationRejected covers processing the same rotation twice:
// the second call must report EventDuplicateError.
func TestDuplicateRotationRejected(t *testing.T) {
	db := newMemDB()
	p := New(db)

	current := testkeys.Gen(21, 1)
	next := testkeys.Gen(22, 1)
	nxt, err := keyconfig.NxtCommitment(1, testkeys.Basics(next), derivation.CodeSHA2_256)
	require.NoError(t, err)

	icp := event.Icp{KeyConfig: keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(current), NextKeyDigest: nxt}}
	icpMsg, err := event.NewInceptionMessage(event.JSON, icp, "")
	require.NoError(t, err)
	prefixStr := icpMsg.Event.Prefix.String()
	require.NoError(t, p.Process(signedRaw(icpMsg, []prefix.AttachedSignature{current[0].Sign(icpMsg.Raw, 0)})))

	priorHash, err := prefix.DeriveSelfAddressing(derivation.CodeSHA2_256, icpMsg.Raw)
	require.NoError(t, err)
	rot := event.Rot{PreviousEventHash: priorHash, KeyConfig: keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(next)}}
	rotEvent := event.Event{Prefix: icpMsg.Event.Prefix, Sn: 1, Data: rot}
	rotMsg, err := rotEvent.Serialize(event.JSON)
	require.NoError(t, err)
	// Rotation events are verified against the pre-event (prior) key
	// config, per processor's "verify against cur.Current" rule, so the
	// rotation is signed by the outgoing key, not the incoming one.
	rotRaw := signedRaw(rotMsg, []prefix.AttachedSignature{current[0].Sign(rotMsg.Raw, 0)})

	require.NoError(t, p.Process(rotRaw))

	err = p.Process(rotRaw)
	require.Error(t, err)
	require.True(t, kerierr.Is(err, kerierr.ErrEventDuplicate))

	s, err := db.ComputeState(prefixStr)
	require.NoError(t, err)
	require.Equal(t, uint64(1), s.Sn)
}

// TestOutOfOrderInteractionEscrowed covers an interaction event arriving
// at sn=4 with nothing logged between sn=1 and sn=3: it must escrow
// rather than commit.
func TestOutOfOrderInteractionEscrowed(t *testing.T) {
	db := newMemDB()
	p := New(db)

	keys := testkeys.Gen(23, 1)
	icp := event.Icp{KeyConfig: keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(keys)}}
	icpMsg, err := event.NewInceptionMessage(event.JSON, icp, "")
	require.NoError(t, err)
	prefixStr := icpMsg.Event.Prefix.String()
	require.NoError(t, p.Process(signedRaw(icpMsg, []prefix.AttachedSignature{keys[0].Sign(icpMsg.Raw, 0)})))

	priorHash, err := prefix.DeriveSelfAddressing(derivation.CodeSHA2_256, icpMsg.Raw)
	require.NoError(t, err)
	ixnEvent := event.Event{Prefix: icpMsg.Event.Prefix, Sn: 4, Data: event.Ixn{PreviousEventHash: priorHash}}
	ixnMsg, err := ixnEvent.Serialize(event.JSON)
	require.NoError(t, err)

	err = p.Process(signedRaw(ixnMsg, []prefix.AttachedSignature{keys[0].Sign(ixnMsg.Raw, 0)}))
	require.Error(t, err)
	require.True(t, kerierr.Is(err, kerierr.ErrEventOutOfOrder))

	_, found, err := db.EventAt(prefixStr, 4)
	require.NoError(t, err)
	require.False(t, found)

	sn, _, found, err := db.LastEventAtSn(prefixStr)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(0), sn)
}

// TestTransferableReceiptEscrowsUntilValidatorKnown covers a transferable
// receipt from a validator whose own identifier state is not yet
// established: the receipt must escrow rather than commit, and
// re-processing it after the validator's inception is logged must
// succeed without altering the receipted controller's own state.
func TestTransferableReceiptEscrowsUntilValidatorKnown(t *testing.T) {
	db := newMemDB()
	p := New(db)

	controllerKeys := testkeys.Gen(24, 1)
	cIcp := event.Icp{KeyConfig: keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(controllerKeys)}}
	cIcpMsg, err := event.NewInceptionMessage(event.JSON, cIcp, "")
	require.NoError(t, err)
	require.NoError(t, p.Process(signedRaw(cIcpMsg, []prefix.AttachedSignature{controllerKeys[0].Sign(cIcpMsg.Raw, 0)})))

	validatorKeys := testkeys.Gen(25, 1)
	vIcp := event.Icp{KeyConfig: keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(validatorKeys)}}
	vIcpMsg, err := event.NewInceptionMessage(event.JSON, vIcp, "")
	require.NoError(t, err)

	eventDigest, err := prefix.DeriveSelfAddressing(derivation.CodeSHA2_256, cIcpMsg.Raw)
	require.NoError(t, err)
	sealDigest, err := prefix.DeriveSelfAddressing(derivation.CodeSHA2_256, vIcpMsg.Raw)
	require.NoError(t, err)

	receipt := event.TransferableReceipt{
		Prefix:      cIcpMsg.Event.Prefix,
		Sn:          0,
		EventDigest: eventDigest,
		Validator:   event.Seal{Prefix: vIcpMsg.Event.Prefix, Digest: sealDigest},
	}
	body, err := receipt.Serialize(event.JSON)
	require.NoError(t, err)
	sig := validatorKeys[0].Sign(body, 0)

	var buf bytes.Buffer
	buf.Write(body)
	buf.WriteString(prefix.EncodeCountCode(prefix.AttachedSigTag, 1))
	buf.WriteString(sig.String())
	vrcRaw := buf.Bytes()

	err = p.ProcessTransferableReceipt(vrcRaw)
	require.Error(t, err)
	require.True(t, kerierr.Is(err, kerierr.ErrEventOutOfOrder))

	require.NoError(t, p.Process(signedRaw(vIcpMsg, []prefix.AttachedSignature{validatorKeys[0].Sign(vIcpMsg.Raw, 0)})))

	require.NoError(t, p.ProcessTransferableReceipt(vrcRaw))

	cState, err := db.ComputeState(cIcpMsg.Event.Prefix.String())
	require.NoError(t, err)
	require.Equal(t, uint64(0), cState.Sn)
}

// TestTransferableReceiptVerifiesAgainstSealedKeyConfig covers a receipt
// sealed to a validator's inception event, processed after that validator
// has since rotated: the receipt must still verify against the key
// config in force at the sealed event (the outgoing keys), not the
// validator's newer rotated key config, and a receipt claiming to carry
// the new keys' signature over that same old seal must be rejected.
func TestTransferableReceiptVerifiesAgainstSealedKeyConfig(t *testing.T) {
	db := newMemDB()
	p := New(db)

	controllerKeys := testkeys.Gen(26, 1)
	cIcp := event.Icp{KeyConfig: keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(controllerKeys)}}
	cIcpMsg, err := event.NewInceptionMessage(event.JSON, cIcp, "")
	require.NoError(t, err)
	require.NoError(t, p.Process(signedRaw(cIcpMsg, []prefix.AttachedSignature{controllerKeys[0].Sign(cIcpMsg.Raw, 0)})))
	eventDigest, err := prefix.DeriveSelfAddressing(derivation.CodeSHA2_256, cIcpMsg.Raw)
	require.NoError(t, err)

	oldKeys := testkeys.Gen(27, 1)
	newKeys := testkeys.Gen(28, 1)
	nxt, err := keyconfig.NxtCommitment(1, testkeys.Basics(newKeys), derivation.CodeSHA2_256)
	require.NoError(t, err)
	vIcp := event.Icp{KeyConfig: keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(oldKeys), NextKeyDigest: nxt}}
	vIcpMsg, err := event.NewInceptionMessage(event.JSON, vIcp, "")
	require.NoError(t, err)
	require.NoError(t, p.Process(signedRaw(vIcpMsg, []prefix.AttachedSignature{oldKeys[0].Sign(vIcpMsg.Raw, 0)})))
	sealDigest, err := prefix.DeriveSelfAddressing(derivation.CodeSHA2_256, vIcpMsg.Raw)
	require.NoError(t, err)

	receipt := event.TransferableReceipt{
		Prefix:      cIcpMsg.Event.Prefix,
		Sn:          0,
		EventDigest: eventDigest,
		Validator:   event.Seal{Prefix: vIcpMsg.Event.Prefix, Digest: sealDigest},
	}
	body, err := receipt.Serialize(event.JSON)
	require.NoError(t, err)

	buildVrc := func(sig prefix.AttachedSignature) []byte {
		var buf bytes.Buffer
		buf.Write(body)
		buf.WriteString(prefix.EncodeCountCode(prefix.AttachedSigTag, 1))
		buf.WriteString(sig.String())
		return buf.Bytes()
	}

	// Rotate the validator away from oldKeys before processing the receipt.
	vRot := event.Rot{PreviousEventHash: sealDigest, KeyConfig: keyconfig.KeyConfig{Threshold: 1, PublicKeys: testkeys.Basics(newKeys)}}
	vRotEvent := event.Event{Prefix: vIcpMsg.Event.Prefix, Sn: 1, Data: vRot}
	vRotMsg, err := vRotEvent.Serialize(event.JSON)
	require.NoError(t, err)
	require.NoError(t, p.Process(signedRaw(vRotMsg, []prefix.AttachedSignature{oldKeys[0].Sign(vRotMsg.Raw, 0)})))

	// Signed with the outgoing key the seal actually anchors to: still
	// verifies, even though the validator's latest Current is newKeys.
	require.NoError(t, p.ProcessTransferableReceipt(buildVrc(oldKeys[0].Sign(body, 0))))

	// Signed with the validator's new key but sealed to the old
	// inception event: the sealed key config is still oldKeys, so this
	// must be rejected rather than incorrectly accepted against Current.
	err = p.ProcessTransferableReceipt(buildVrc(newKeys[0].Sign(body, 0)))
	require.Error(t, err)
}
