// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/toole-brendan/keri/keyconfig"
	"github.com/toole-brendan/keri/state"
)

// Icp is the inception event payload from spec.md §4.4: it mints an
// identifier's first KeyConfig and witness set.
type Icp struct {
	KeyConfig      keyconfig.KeyConfig
	WitnessConfig  InceptionWitnessConfig
	Configuration  []string // inception_configuration traits, opaque to the state machine
}

// Ilk implements EventData.
func (Icp) Ilk() Ilk { return IlkIcp }

// applyPayload installs KeyConfig as current, records witnesses and tally,
// and resets delegated_keys, per spec.md §4.4's Icp effect.
func (e Icp) applyPayload(s state.IdentifierState) (state.IdentifierState, error) {
	s.Current = keyconfig.KeyConfig{
		Threshold:     e.KeyConfig.Threshold,
		PublicKeys:    e.KeyConfig.PublicKeys,
		NextKeyDigest: e.KeyConfig.NextKeyDigest,
	}
	s.Witnesses = e.WitnessConfig.InitialWitnesses
	s.Tally = e.WitnessConfig.Tally
	s.DelegatedKeys = nil
	return s, nil
}
