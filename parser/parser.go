// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package parser decodes a stream of key event messages from a KEL byte
// stream: one event message, optionally followed by an attached-signature
// or receipt-couplet count-coded block, repeated until the stream is
// exhausted. It is grounded directly on the original source's
// event_message/parse.rs, which tries a JSON stream decoder and falls back
// to a CBOR one rather than sniffing a magic byte, because the version
// string alone does not disambiguate a truncated/malformed message from
// one in the other format.
package parser

import (
	"bytes"
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
	"github.com/toole-brendan/keri/event"
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/serialization"
)

// Message decodes exactly one event message off the front of s, trying
// JSON first and falling back to CBOR on failure, and returns it together
// with the number of bytes consumed and the format it decoded under. Unlike
// SignedMessage it does not expect a following "-A<NN>" signature block;
// eventdb folds a KEL through this entry point, since the stored KEL holds
// one event message per sequence number with signatures kept separately.
func Message(s []byte) (event.EventMessage, serialization.Format, int, error) {
	return message(s)
}

func message(s []byte) (event.EventMessage, serialization.Format, int, error) {
	if m, n, err := jsonMessage(s); err == nil {
		return m, serialization.JSON, n, nil
	}
	if m, n, err := cborMessage(s); err == nil {
		return m, serialization.CBOR, n, nil
	}
	return event.EventMessage{}, "", 0, kerierr.Serialization("parser: could not decode an event message as JSON or CBOR")
}

func jsonMessage(s []byte) (event.EventMessage, int, error) {
	dec := json.NewDecoder(bytes.NewReader(s))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return event.EventMessage{}, 0, err
	}
	n := int(dec.InputOffset())
	m, err := event.UnmarshalEventMessage(serialization.JSON, raw)
	if err != nil {
		return event.EventMessage{}, 0, err
	}
	return m, n, nil
}

func cborMessage(s []byte) (event.EventMessage, int, error) {
	dec := cbor.NewDecoder(bytes.NewReader(s))
	var raw cbor.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return event.EventMessage{}, 0, err
	}
	n := dec.NumBytesRead()
	m, err := event.UnmarshalEventMessage(serialization.CBOR, raw)
	if err != nil {
		return event.EventMessage{}, 0, err
	}
	return m, n, nil
}

// sigCount reads one "-A<NN>" count code off the front of s.
func sigCount(s []byte) (uint16, int, error) {
	n, consumed, err := prefix.DecodeCountCode(prefix.AttachedSigTag, string(s))
	if err != nil {
		return 0, 0, err
	}
	return n, consumed, nil
}

// signatures reads a sig-count header followed by exactly that many
// attached signatures, erroring if the stream runs short or the count is
// wrong, per the original source's signatures combinator.
func signatures(s []byte) ([]prefix.AttachedSignature, int, error) {
	count, consumed, err := sigCount(s)
	if err != nil {
		return nil, 0, err
	}
	sigs := make([]prefix.AttachedSignature, 0, count)
	rest := string(s[consumed:])
	for i := uint16(0); i < count; i++ {
		sig, n, err := prefix.ParseAttachedSignature(rest)
		if err != nil {
			return nil, 0, kerierr.Serialization("parser: signature %d/%d: %v", i+1, count, err)
		}
		sigs = append(sigs, sig)
		rest = rest[n:]
		consumed += n
	}
	return sigs, consumed, nil
}

// SignedMessage decodes one event message and its attached-signature
// block off the front of s, returning the number of bytes consumed.
func SignedMessage(s []byte) (event.SignedEventMessage, int, error) {
	m, _, n, err := message(s)
	if err != nil {
		return event.SignedEventMessage{}, 0, err
	}
	sigs, sigN, err := signatures(s[n:])
	if err != nil {
		return event.SignedEventMessage{}, 0, err
	}
	return m.Sign(sigs), n + sigN, nil
}

// SignedEventStream decodes every signed event message in s, in order. It
// never returns an error: decoding stops at the first point where no
// further signed message parses, and the bytes from there on are returned
// unconsumed, mirroring nom's many0 combinator.
func SignedEventStream(s []byte) ([]event.SignedEventMessage, []byte) {
	var out []event.SignedEventMessage
	for len(s) > 0 {
		m, n, err := SignedMessage(s)
		if err != nil {
			break
		}
		out = append(out, m)
		s = s[n:]
	}
	return out, s
}

// coupletCount reads one "-C<NN>" count code off the front of s.
func coupletCount(s []byte) (uint16, int, error) {
	return prefix.DecodeCountCode(prefix.ReceiptCoupletTag, string(s))
}

// couplets reads a couplet-count header followed by exactly that many
// (witness, signature) pairs.
func couplets(s []byte) ([]event.ReceiptCouplet, int, error) {
	count, consumed, err := coupletCount(s)
	if err != nil {
		return nil, 0, err
	}
	out := make([]event.ReceiptCouplet, 0, count)
	rest := string(s[consumed:])
	for i := uint16(0); i < count; i++ {
		witness, err := prefix.ParseBasic(rest)
		if err != nil {
			return nil, 0, kerierr.Serialization("parser: couplet %d/%d witness: %v", i+1, count, err)
		}
		wN := len(witness.String())
		rest = rest[wN:]
		consumed += wN

		sig, err := prefix.ParseSelfSigning(rest)
		if err != nil {
			return nil, 0, kerierr.Serialization("parser: couplet %d/%d signature: %v", i+1, count, err)
		}
		sN := len(sig.String())
		rest = rest[sN:]
		consumed += sN

		out = append(out, event.ReceiptCouplet{Witness: witness, Signature: sig})
	}
	return out, consumed, nil
}

// ReceiptMessage decodes one non-transferable receipt (body plus couplet
// block) off the front of s.
func ReceiptMessage(s []byte) (event.NonTransferableReceipt, int, error) {
	body, bodyN, _, err := receiptBody(s)
	if err != nil {
		return event.NonTransferableReceipt{}, 0, err
	}
	cs, coupletN, err := couplets(s[bodyN:])
	if err != nil {
		return event.NonTransferableReceipt{}, 0, err
	}
	body.Couplets = cs
	return body, bodyN + coupletN, nil
}

func receiptBody(s []byte) (event.NonTransferableReceipt, int, serialization.Format, error) {
	dec := json.NewDecoder(bytes.NewReader(s))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err == nil {
		n := int(dec.InputOffset())
		r, err := event.ParseNonTransferableReceiptBody(serialization.JSON, raw)
		if err == nil {
			return r, n, serialization.JSON, nil
		}
	}
	cdec := cbor.NewDecoder(bytes.NewReader(s))
	var craw cbor.RawMessage
	if err := cdec.Decode(&craw); err == nil {
		n := cdec.NumBytesRead()
		r, err := event.ParseNonTransferableReceiptBody(serialization.CBOR, craw)
		if err == nil {
			return r, n, serialization.CBOR, nil
		}
	}
	return event.NonTransferableReceipt{}, 0, "", kerierr.Serialization("parser: could not decode a receipt body as JSON or CBOR")
}

func transferableReceiptBody(s []byte) (event.TransferableReceipt, []byte, int, error) {
	dec := json.NewDecoder(bytes.NewReader(s))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err == nil {
		n := int(dec.InputOffset())
		r, err := event.ParseTransferableReceipt(serialization.JSON, raw)
		if err == nil {
			return r, []byte(raw), n, nil
		}
	}
	cdec := cbor.NewDecoder(bytes.NewReader(s))
	var craw cbor.RawMessage
	if err := cdec.Decode(&craw); err == nil {
		n := cdec.NumBytesRead()
		r, err := event.ParseTransferableReceipt(serialization.CBOR, craw)
		if err == nil {
			return r, []byte(craw), n, nil
		}
	}
	return event.TransferableReceipt{}, nil, 0, kerierr.Serialization("parser: could not decode a transferable receipt as JSON or CBOR")
}

// TransferableReceiptMessage decodes one transferable receipt body and its
// attached-signature block off the front of s, returning the receipt, the
// exact raw bytes of the body (the message the attached signatures cover),
// the signatures, and the total bytes consumed.
func TransferableReceiptMessage(s []byte) (event.TransferableReceipt, []byte, []prefix.AttachedSignature, int, error) {
	r, bodyRaw, bodyN, err := transferableReceiptBody(s)
	if err != nil {
		return event.TransferableReceipt{}, nil, nil, 0, err
	}
	sigs, sigN, err := signatures(s[bodyN:])
	if err != nil {
		return event.TransferableReceipt{}, nil, nil, 0, err
	}
	return r, bodyRaw, sigs, bodyN + sigN, nil
}
