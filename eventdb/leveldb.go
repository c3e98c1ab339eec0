// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventdb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/parser"
	kprefix "github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/state"
)

// LevelDB is the concrete EventDB backed by goleveldb. Keys are laid out
// by identifier prefix and sequence number exactly the way the teacher's
// blockchain package lays out its chain-state buckets: a short ASCII
// namespace tag, the prefix string, and the big-endian sn, so that a
// prefix's events occupy one contiguous, numerically-ordered key range.
type LevelDB struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) a LevelDB-backed EventDB at path.
func Open(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, kerierr.Semantic("eventdb: open %s: %v", path, err)
	}
	log.Infof("Opened event database %s", path)
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

func eventKey(prefix string, sn uint64) []byte {
	return snKey("kel", prefix, sn)
}

func sigKey(prefix string, sn uint64) []byte {
	return snKey("sig", prefix, sn)
}

func escrowKey(kind EscrowKind, prefix string, sn uint64) []byte {
	return snKey("escrow/"+string(kind), prefix, sn)
}

func snKey(namespace, prefix string, sn uint64) []byte {
	var snBuf [8]byte
	binary.BigEndian.PutUint64(snBuf[:], sn)
	return []byte(fmt.Sprintf("%s/%s/", namespace, prefix) + string(snBuf[:]))
}

func (l *LevelDB) get(key []byte) ([]byte, bool, error) {
	v, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, kerierr.Semantic("eventdb: get: %v", err)
	}
	return v, true, nil
}

// EventAt implements EventDB.
func (l *LevelDB) EventAt(prefix string, sn uint64) ([]byte, bool, error) {
	return l.get(eventKey(prefix, sn))
}

// LastEventAtSn implements EventDB: it scans forward from sn 0 for the
// highest contiguously-logged sequence number. The KEL is append-only and
// gap-free by construction (AppendEvent is only ever called with the
// correct next sn), so a linear scan is the simplest faithful
// implementation; a production deployment would instead keep a per-prefix
// "tip" record, but that is an optimization outside this module's scope
// (see DESIGN.md).
func (l *LevelDB) LastEventAtSn(prefix string) (uint64, []byte, bool, error) {
	var lastSn uint64
	var lastRaw []byte
	found := false
	for sn := uint64(0); ; sn++ {
		raw, ok, err := l.EventAt(prefix, sn)
		if err != nil {
			return 0, nil, false, err
		}
		if !ok {
			break
		}
		lastSn, lastRaw, found = sn, raw, true
	}
	return lastSn, lastRaw, found, nil
}

// AppendEvent implements EventDB. raw holds only the event message bytes
// (no "-A<NN>" block); signatures are kept in a separate key range so
// ComputeState's fold can decode one bare event message per sn rather than
// a signed wire form.
func (l *LevelDB) AppendEvent(prefix string, sn uint64, raw []byte, sigs []kprefix.AttachedSignature) error {
	if err := l.db.Put(eventKey(prefix, sn), raw, nil); err != nil {
		return kerierr.Semantic("eventdb: append %s/%d: %v", prefix, sn, err)
	}
	if err := l.db.Put(sigKey(prefix, sn), encodeSigs(sigs), nil); err != nil {
		return kerierr.Semantic("eventdb: append signatures %s/%d: %v", prefix, sn, err)
	}
	return nil
}

// Signatures implements EventDB.
func (l *LevelDB) Signatures(prefix string, sn uint64) ([]kprefix.AttachedSignature, bool, error) {
	v, found, err := l.get(sigKey(prefix, sn))
	if err != nil || !found {
		return nil, found, err
	}
	sigs, err := decodeSigs(v)
	if err != nil {
		return nil, false, err
	}
	return sigs, true, nil
}

func encodeSigs(sigs []kprefix.AttachedSignature) []byte {
	var buf bytes.Buffer
	buf.WriteString(kprefix.EncodeCountCode(kprefix.AttachedSigTag, uint16(len(sigs))))
	for _, s := range sigs {
		buf.WriteString(s.String())
	}
	return buf.Bytes()
}

func decodeSigs(b []byte) ([]kprefix.AttachedSignature, error) {
	count, consumed, err := kprefix.DecodeCountCode(kprefix.AttachedSigTag, string(b))
	if err != nil {
		return nil, kerierr.Semantic("eventdb: bad stored signature block: %v", err)
	}
	out := make([]kprefix.AttachedSignature, 0, count)
	rest := string(b[consumed:])
	for i := uint16(0); i < count; i++ {
		sig, n, err := kprefix.ParseAttachedSignature(rest)
		if err != nil {
			return nil, kerierr.Semantic("eventdb: bad stored signature %d/%d: %v", i+1, count, err)
		}
		out = append(out, sig)
		rest = rest[n:]
	}
	return out, nil
}

// ComputeState implements EventDB by folding the stored KEL for prefix,
// decoding each raw event message through the parser/event packages.
func (l *LevelDB) ComputeState(prefix string) (state.IdentifierState, error) {
	return Fold(
		func(sn uint64) ([]byte, bool, error) { return l.EventAt(prefix, sn) },
		func(s state.IdentifierState, raw []byte) (state.IdentifierState, error) {
			m, _, _, err := parser.Message(raw)
			if err != nil {
				return state.IdentifierState{}, err
			}
			return m.Apply(s)
		},
	)
}

func (l *LevelDB) escrow(kind EscrowKind, prefix string, sn uint64, raw []byte) error {
	if err := l.db.Put(escrowKey(kind, prefix, sn), raw, nil); err != nil {
		return kerierr.Semantic("eventdb: escrow %s %s/%d: %v", kind, prefix, sn, err)
	}
	return nil
}

// EscrowOutOfOrder implements EventDB.
func (l *LevelDB) EscrowOutOfOrder(prefix string, sn uint64, raw []byte) error {
	return l.escrow(EscrowOutOfOrder, prefix, sn, raw)
}

// EscrowPartialSig implements EventDB.
func (l *LevelDB) EscrowPartialSig(prefix string, sn uint64, raw []byte) error {
	return l.escrow(EscrowPartialSig, prefix, sn, raw)
}

// EscrowNTReceipt implements EventDB.
func (l *LevelDB) EscrowNTReceipt(prefix string, sn uint64, raw []byte) error {
	return l.escrow(EscrowNTReceipt, prefix, sn, raw)
}

// EscrowTReceipt implements EventDB.
func (l *LevelDB) EscrowTReceipt(prefix string, sn uint64, raw []byte) error {
	return l.escrow(EscrowTReceipt, prefix, sn, raw)
}

// TakeEscrowAt implements EventDB.
func (l *LevelDB) TakeEscrowAt(kind EscrowKind, prefix string, sn uint64) ([]byte, bool, error) {
	key := escrowKey(kind, prefix, sn)
	raw, found, err := l.get(key)
	if err != nil || !found {
		return nil, found, err
	}
	if err := l.db.Delete(key, nil); err != nil {
		return nil, false, kerierr.Semantic("eventdb: take escrow %s %s/%d: %v", kind, prefix, sn, err)
	}
	return raw, true, nil
}

var _ EventDB = (*LevelDB)(nil)
