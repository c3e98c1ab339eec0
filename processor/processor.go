// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package processor implements the event-processing pipeline from spec.md
// §4.6: decode, verify, apply, commit, escrow, and promote. It is
// structured after the teacher's mempool.TxPool orphan pool — escrow
// classes keyed by (prefix, sn) instead of (txid)/(outpoint), promoted on
// commit rather than scanned on a TTL timer, per spec.md §5's
// commit-triggered promotion rule (see DESIGN.md).
package processor

import (
	"sync"

	"github.com/toole-brendan/keri/event"
	"github.com/toole-brendan/keri/eventdb"
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/keyconfig"
	"github.com/toole-brendan/keri/parser"
)

// Processor applies signed event messages and receipts to identifier
// state stored in an eventdb.EventDB, escrowing what cannot yet be
// admitted and promoting escrowed entries once their dependency commits.
type Processor struct {
	db eventdb.EventDB

	// lockMtx guards creation of per-prefix locks; lock itself is held
	// only while processing events for that one prefix, the same
	// striping scheme spec.md §5 allows ("MAY shard by prefix").
	lockMtx sync.Mutex
	locks   map[string]*sync.Mutex
}

// New wraps db in a Processor.
func New(db eventdb.EventDB) *Processor {
	return &Processor{db: db, locks: make(map[string]*sync.Mutex)}
}

func (p *Processor) lockFor(prefix string) *sync.Mutex {
	p.lockMtx.Lock()
	defer p.lockMtx.Unlock()
	mu, ok := p.locks[prefix]
	if !ok {
		mu = &sync.Mutex{}
		p.locks[prefix] = mu
	}
	return mu
}

func keyConfigOfEventData(data event.EventData) (keyconfig.KeyConfig, bool) {
	switch d := data.(type) {
	case event.Icp:
		return d.KeyConfig, true
	case event.Dip:
		return d.KeyConfig, true
	default:
		return keyconfig.KeyConfig{}, false
	}
}

// Process decodes raw as a signed event message and admits it per
// spec.md §4.6: verifies the inception binding (for Icp/Dip), folds the
// current IdentifierState, applies the event's semantics, verifies its
// attached signatures against the pre-event key config, and commits —
// escrowing instead when the event is out-of-order or under-signed.
func (p *Processor) Process(raw []byte) error {
	signed, _, err := parser.SignedMessage(raw)
	if err != nil {
		return err
	}
	prefix := signed.EventMessage.Event.Prefix.String()
	mu := p.lockFor(prefix)
	mu.Lock()
	defer mu.Unlock()
	return p.processLocked(prefix, signed, raw)
}

func (p *Processor) processLocked(prefix string, signed event.SignedEventMessage, raw []byte) error {
	switch signed.EventMessage.Event.Data.(type) {
	case event.Icp, event.Dip:
		ok, err := signed.EventMessage.VerifyInceptionBinding()
		if err != nil {
			return err
		}
		if !ok {
			return kerierr.Semantic("processor: inception binding verification failed for %s", prefix)
		}
	}

	cur, err := p.db.ComputeState(prefix)
	if err != nil {
		return err
	}

	sn := signed.EventMessage.Event.Sn
	if _, err := signed.EventMessage.Apply(cur); err != nil {
		if kerierr.Is(err, kerierr.ErrEventOutOfOrder) {
			if escErr := p.db.EscrowOutOfOrder(prefix, sn, raw); escErr != nil {
				return escErr
			}
			log.Debugf("escrowed out-of-order event %s/%d", prefix, sn)
		}
		return err
	}

	verifyAgainst := cur.Current
	if kc, ok := keyConfigOfEventData(signed.EventMessage.Event.Data); ok && cur.IsDefault() {
		verifyAgainst = kc
	}
	if err := verifyAgainst.Verify(signed.EventMessage.Raw, signed.Signatures); err != nil {
		if kerierr.Is(err, kerierr.ErrNotEnoughSigs) {
			if escErr := p.db.EscrowPartialSig(prefix, sn, raw); escErr != nil {
				return escErr
			}
			log.Debugf("escrowed partially-signed event %s/%d", prefix, sn)
		}
		return err
	}

	if err := p.db.AppendEvent(prefix, sn, signed.EventMessage.Raw, signed.Signatures); err != nil {
		return err
	}
	log.Infof("logged %s event %s/%d", signed.EventMessage.Event.Data.Ilk(), prefix, sn)

	// The event just committed supersedes any partial-signature escrow
	// entry of its own sn, and may unblock an out-of-order entry waiting
	// on it at sn+1.
	p.db.TakeEscrowAt(eventdb.EscrowPartialSig, prefix, sn)
	p.promote(prefix, sn+1)
	return nil
}

// promote attempts to admit the event escrowed out-of-order at
// (prefix, nextSn), if any, now that its predecessor has committed. A
// successful promotion recurses (via processLocked's own call to
// promote) to cascade through a run of events that all arrived before
// their common ancestor.
func (p *Processor) promote(prefix string, nextSn uint64) {
	raw, found, err := p.db.TakeEscrowAt(eventdb.EscrowOutOfOrder, prefix, nextSn)
	if err != nil || !found {
		return
	}
	signed, _, err := parser.SignedMessage(raw)
	if err != nil {
		log.Warnf("escrowed event %s/%d no longer parses: %v", prefix, nextSn, err)
		return
	}
	if err := p.processLocked(prefix, signed, raw); err != nil {
		log.Warnf("failed to promote escrowed event %s/%d: %v", prefix, nextSn, err)
	}
}
