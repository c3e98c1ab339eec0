// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/toole-brendan/keri/keyconfig"
	"github.com/toole-brendan/keri/prefix"
	"github.com/toole-brendan/keri/state"
)

// Dip is the delegated inception event payload from spec.md §4.4: an Icp
// that additionally names a delegator. Neither applyPayload nor
// processor.Processor checks that the delegator's log anchors this
// inception via a seal, and nothing escrows a Dip while waiting for such
// a seal: a Dip is admitted on the same binding, sequence and signature
// checks as an Icp.
type Dip struct {
	KeyConfig     keyconfig.KeyConfig
	WitnessConfig InceptionWitnessConfig
	Configuration []string
	Delegator     prefix.IdentifierPrefix
}

// Ilk implements EventData.
func (Dip) Ilk() Ilk { return IlkDip }

// applyPayload installs KeyConfig/witnesses exactly like Icp, additionally
// recording the delegator.
func (e Dip) applyPayload(s state.IdentifierState) (state.IdentifierState, error) {
	s.Current = keyconfig.KeyConfig{
		Threshold:     e.KeyConfig.Threshold,
		PublicKeys:    e.KeyConfig.PublicKeys,
		NextKeyDigest: e.KeyConfig.NextKeyDigest,
	}
	s.Witnesses = e.WitnessConfig.InitialWitnesses
	s.Tally = e.WitnessConfig.Tally
	s.DelegatedKeys = nil
	delegator := e.Delegator
	s.Delegator = &delegator
	return s, nil
}
