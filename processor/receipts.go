// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package processor

import (
	"github.com/toole-brendan/keri/event"
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/parser"
	"github.com/toole-brendan/keri/state"
)

// ProcessReceipt admits a non-transferable ("rct") witness receipt: the
// event it receipts must already be logged, and every couplet must verify
// against that event's exact raw bytes. A receipt for an event not yet
// logged is stored under eventdb.EscrowNTReceipt and reported as
// out-of-order; committing that event later does not re-run it
// (processLocked promotes only out-of-order events).
func (p *Processor) ProcessReceipt(raw []byte) error {
	receipt, _, err := parser.ReceiptMessage(raw)
	if err != nil {
		return err
	}
	prefix := receipt.Prefix.String()
	mu := p.lockFor(prefix)
	mu.Lock()
	defer mu.Unlock()

	eventRaw, found, err := p.db.EventAt(prefix, receipt.Sn)
	if err != nil {
		return err
	}
	if !found {
		if escErr := p.db.EscrowNTReceipt(prefix, receipt.Sn, raw); escErr != nil {
			return escErr
		}
		return kerierr.OutOfOrder("processor: receipt for unlogged event %s/%d", prefix, receipt.Sn)
	}
	if !receipt.EventDigest.VerifyBinding(eventRaw) {
		return kerierr.Semantic("processor: receipt digest does not match logged event %s/%d", prefix, receipt.Sn)
	}
	for i, c := range receipt.Couplets {
		ok, err := event.VerifyCouplet(c, eventRaw)
		if err != nil {
			return kerierr.Crypto("processor: receipt couplet %d: %v", i, err)
		}
		if !ok {
			return kerierr.Semantic("processor: receipt couplet %d failed to verify", i)
		}
	}
	log.Infof("accepted %d witness receipt(s) for %s/%d", len(receipt.Couplets), prefix, receipt.Sn)
	return nil
}

// ProcessTransferableReceipt admits a transferable ("vrc") validator
// receipt: the receipted event must already be logged, and the attached
// signature(s) must verify against the validator's key config as of the
// specific event its seal (pre, dig) anchors to — not the validator's
// latest key config, which may have since rotated. A receipt whose seal
// does not yet resolve to a logged validator event (validator unknown, or
// known but the sealed event not yet in its KEL) is escrowed for later
// retry, per spec.md §4.6.
func (p *Processor) ProcessTransferableReceipt(raw []byte) error {
	receipt, body, sigs, _, err := parser.TransferableReceiptMessage(raw)
	if err != nil {
		return err
	}
	prefix := receipt.Prefix.String()
	mu := p.lockFor(prefix)
	mu.Lock()
	defer mu.Unlock()

	eventRaw, found, err := p.db.EventAt(prefix, receipt.Sn)
	if err != nil {
		return err
	}
	if !found {
		if escErr := p.db.EscrowTReceipt(prefix, receipt.Sn, raw); escErr != nil {
			return escErr
		}
		return kerierr.OutOfOrder("processor: transferable receipt for unlogged event %s/%d", prefix, receipt.Sn)
	}
	if !receipt.EventDigest.VerifyBinding(eventRaw) {
		return kerierr.Semantic("processor: receipt digest does not match logged event %s/%d", prefix, receipt.Sn)
	}

	validatorPrefix := receipt.Validator.Prefix.String()
	validatorState, found, err := p.stateAtSeal(validatorPrefix, receipt.Validator)
	if err != nil {
		return err
	}
	if !found {
		if escErr := p.db.EscrowTReceipt(prefix, receipt.Sn, raw); escErr != nil {
			return escErr
		}
		return kerierr.OutOfOrder("processor: transferable receipt seal %s not yet in validator %s's log", receipt.Validator.Digest, validatorPrefix)
	}
	if err := validatorState.Current.Verify(body, sigs); err != nil {
		return err
	}
	log.Infof("accepted transferable receipt from %s for %s/%d", validatorPrefix, prefix, receipt.Sn)
	return nil
}

// stateAtSeal resolves the validator's state at the seal's (pre, dig), per
// spec.md §4.6: it folds validatorPrefix's own KEL from sn 0 forward and
// stops at the first event whose raw bytes seal's digest commits to,
// returning the IdentifierState as of that event rather than the
// validator's latest state. A validator that has since rotated is still
// verified against the key config in force when it emitted the sealed
// event, not its current one; found is false if the validator is unknown
// or its KEL does not yet contain an event matching the seal.
func (p *Processor) stateAtSeal(validatorPrefix string, seal event.Seal) (state.IdentifierState, bool, error) {
	s := state.New()
	for sn := uint64(0); ; sn++ {
		raw, found, err := p.db.EventAt(validatorPrefix, sn)
		if err != nil {
			return state.IdentifierState{}, false, err
		}
		if !found {
			return state.IdentifierState{}, false, nil
		}
		m, _, _, err := parser.Message(raw)
		if err != nil {
			return state.IdentifierState{}, false, err
		}
		s, err = m.Apply(s)
		if err != nil {
			return state.IdentifierState{}, false, err
		}
		if seal.Digest.VerifyBinding(raw) {
			return s, true, nil
		}
	}
}
