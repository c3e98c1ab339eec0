// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"bytes"

	"github.com/toole-brendan/keri/prefix"
)

// SignedEventMessage is an EventMessage with its attached-signature block,
// per spec.md §3/§4.1: the controller's event bytes followed by an
// "-A<NN>" count code and NN indexed signatures.
type SignedEventMessage struct {
	EventMessage EventMessage
	Signatures   []prefix.AttachedSignature
}

// Sign attaches sigs to m, producing the signed wire form.
func (m EventMessage) Sign(sigs []prefix.AttachedSignature) SignedEventMessage {
	return SignedEventMessage{EventMessage: m, Signatures: sigs}
}

// Serialize renders the full signed wire form: the event message's raw
// bytes, the "-A<NN>" count code, then each signature's encoded form in
// order.
func (s SignedEventMessage) Serialize() []byte {
	var buf bytes.Buffer
	buf.Write(s.EventMessage.Raw)
	buf.WriteString(prefix.EncodeCountCode(prefix.AttachedSigTag, uint16(len(s.Signatures))))
	for _, sig := range s.Signatures {
		buf.WriteString(sig.String())
	}
	return buf.Bytes()
}
