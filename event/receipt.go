// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"bytes"

	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/serialization"
)

// rctWire is the flat wire shape of a non-transferable receipt body.
type rctWire struct {
	Vs  string                   `json:"vs" cbor:"vs"`
	Pre string                   `json:"pre" cbor:"pre"`
	Sn  serialization.HexCompact `json:"sn" cbor:"sn"`
	Ilk string                   `json:"ilk" cbor:"ilk"`
	Dig string                   `json:"dig" cbor:"dig"`
}

// ReceiptCouplet is one (witness, signature) pair attached to a
// non-transferable receipt: the witness signs the receipted event's raw
// bytes directly with its own non-transferable basic key, so the
// signature carries no key-list index the way an attached establishment
// signature does.
type ReceiptCouplet struct {
	Witness   prefix.Basic
	Signature prefix.SelfSigning
}

// NonTransferableReceipt is the "rct" message from spec.md §3/§4.2: a
// witness's receipt of one specific (prefix, sn, digest) event, carried as
// a bare body plus a block of witness/signature couplets rather than a
// signed establishment-key block, since witnesses are not part of the
// receipted identifier's own key config.
//
// spec.md and the original source specify the couplet semantics but not a
// wire grammar for the couplet block; this module extends the "-A<NN>"
// attached-signature count-code convention with a parallel "-C<NN>" tag
// (prefix.ReceiptCoupletTag) rather than inventing an unrelated framing.
// See DESIGN.md.
type NonTransferableReceipt struct {
	Prefix      prefix.IdentifierPrefix
	Sn          uint64
	EventDigest prefix.SelfAddressing
	Couplets    []ReceiptCouplet
}

func (r NonTransferableReceipt) bodyWire() rctWire {
	return rctWire{Pre: r.Prefix.String(), Sn: serialization.HexCompact(r.Sn), Ilk: string(IlkRct), Dig: r.EventDigest.String()}
}

// SerializeBody renders the receipt body (without its couplet block)
// through the standard two-pass size-fixing procedure.
func (r NonTransferableReceipt) SerializeBody(format Format) ([]byte, error) {
	w := r.bodyWire()
	return serialization.EncodeSized(format,
		func(vs string) { w.Vs = vs },
		func() ([]byte, error) { return serialization.Marshal(format, w) })
}

// Serialize renders the full receipt wire form: the body bytes, the
// "-C<NN>" couplet count code, then each witness prefix followed by its
// signature prefix, in order.
func (r NonTransferableReceipt) Serialize(format Format) ([]byte, error) {
	body, err := r.SerializeBody(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(body)
	buf.WriteString(prefix.EncodeCountCode(prefix.ReceiptCoupletTag, uint16(len(r.Couplets))))
	for _, c := range r.Couplets {
		buf.WriteString(c.Witness.String())
		buf.WriteString(c.Signature.String())
	}
	return buf.Bytes(), nil
}

// ParseNonTransferableReceiptBody decodes a receipt body (the portion
// before the couplet block); raw must hold exactly the body's bytes, which
// the caller has already delimited.
func ParseNonTransferableReceiptBody(format Format, raw []byte) (NonTransferableReceipt, error) {
	var w rctWire
	if err := serialization.Unmarshal(format, raw, &w); err != nil {
		return NonTransferableReceipt{}, err
	}
	if Ilk(w.Ilk) != IlkRct {
		return NonTransferableReceipt{}, kerierr.Semantic("event: not a receipt body (ilk %q)", w.Ilk)
	}
	pre, err := prefix.ParseIdentifier(w.Pre)
	if err != nil {
		return NonTransferableReceipt{}, kerierr.Semantic("event: bad receipt pre %q: %v", w.Pre, err)
	}
	dig, err := prefix.ParseSelfAddressing(w.Dig)
	if err != nil {
		return NonTransferableReceipt{}, kerierr.Semantic("event: bad receipt dig %q: %v", w.Dig, err)
	}
	return NonTransferableReceipt{Prefix: pre, Sn: uint64(w.Sn), EventDigest: dig}, nil
}

// VerifyCouplet checks one couplet's signature over eventRaw, the exact
// raw bytes of the receipted event.
func VerifyCouplet(c ReceiptCouplet, eventRaw []byte) (bool, error) {
	return c.Witness.Verify(eventRaw, c.Signature.Raw())
}

// vrcWire is the flat wire shape of a transferable receipt: it reuses the
// general event field names (pre/sn/dig identify the receipted event) plus
// a "seal" anchoring the validator's own log entry that carries this
// receipt, per spec.md's "event message with seal{pre,dig}" shape.
type vrcWire struct {
	Vs   string                   `json:"vs" cbor:"vs"`
	Pre  string                   `json:"pre" cbor:"pre"`
	Sn   serialization.HexCompact `json:"sn" cbor:"sn"`
	Ilk  string                   `json:"ilk" cbor:"ilk"`
	Dig  string                   `json:"dig" cbor:"dig"`
	Seal sealWire                 `json:"seal" cbor:"seal"`
}

// TransferableReceipt is the "vrc" message from spec.md §3/§4.2: a
// transferable validator's receipt of one (prefix, sn, digest) event,
// anchored to the validator's own log via Seal and signed with the
// establishment keys in force at the sealed event (not necessarily the
// validator's latest key config, if it has since rotated), using the
// ordinary "-A<NN>" attached-signature block (SignedEventMessage), not a
// couplet block.
type TransferableReceipt struct {
	Prefix      prefix.IdentifierPrefix
	Sn          uint64
	EventDigest prefix.SelfAddressing
	Validator   Seal
}

func (r TransferableReceipt) toWire() vrcWire {
	return vrcWire{
		Pre:  r.Prefix.String(),
		Sn:   serialization.HexCompact(r.Sn),
		Ilk:  string(IlkVrc),
		Dig:  r.EventDigest.String(),
		Seal: r.Validator.toWire(),
	}
}

// Serialize renders the receipt body through the standard two-pass
// size-fixing procedure; the caller attaches the validator's signature
// block itself, the same as any other signed event message.
func (r TransferableReceipt) Serialize(format Format) ([]byte, error) {
	w := r.toWire()
	return serialization.EncodeSized(format,
		func(vs string) { w.Vs = vs },
		func() ([]byte, error) { return serialization.Marshal(format, w) })
}

// ParseTransferableReceipt decodes a vrc body.
func ParseTransferableReceipt(format Format, raw []byte) (TransferableReceipt, error) {
	var w vrcWire
	if err := serialization.Unmarshal(format, raw, &w); err != nil {
		return TransferableReceipt{}, err
	}
	if Ilk(w.Ilk) != IlkVrc {
		return TransferableReceipt{}, kerierr.Semantic("event: not a transferable receipt (ilk %q)", w.Ilk)
	}
	pre, err := prefix.ParseIdentifier(w.Pre)
	if err != nil {
		return TransferableReceipt{}, kerierr.Semantic("event: bad receipt pre %q: %v", w.Pre, err)
	}
	dig, err := prefix.ParseSelfAddressing(w.Dig)
	if err != nil {
		return TransferableReceipt{}, kerierr.Semantic("event: bad receipt dig %q: %v", w.Dig, err)
	}
	validator, err := w.Seal.toSeal()
	if err != nil {
		return TransferableReceipt{}, kerierr.Semantic("event: bad receipt seal: %v", err)
	}
	return TransferableReceipt{Prefix: pre, Sn: uint64(w.Sn), EventDigest: dig, Validator: validator}, nil
}
