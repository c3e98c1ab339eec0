// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keyconfig implements threshold-signature verification and the
// next-key XOR-fold commitment from spec.md §4.3. It is structured like
// the teacher's crypto/musig2 participant/threshold bookkeeping, trimmed
// to the stateless verify/commit operations KERI needs: unlike MuSig2,
// KERI threshold signatures are independently verified per signer rather
// than aggregated into one key and one signature (see DESIGN.md).
package keyconfig

import (
	"fmt"

	"github.com/toole-brendan/keri/derivation"
	"github.com/toole-brendan/keri/kerierr"
	"github.com/toole-brendan/keri/prefix"
)

// KeyConfig is the (threshold, public_keys, next_key_digest) tuple from
// spec.md §3. Invariant: 1 <= threshold <= len(PublicKeys).
type KeyConfig struct {
	Threshold     uint64
	PublicKeys    []prefix.Basic
	NextKeyDigest prefix.SelfAddressing
}

// New builds a KeyConfig, defaulting the threshold to len(keys)/2+1 when
// threshold is nil, matching the keriox KeyConfig::new convenience
// constructor.
func New(keys []prefix.Basic, nextKeyDigest prefix.SelfAddressing, threshold *uint64) (KeyConfig, error) {
	t := uint64(len(keys))/2 + 1
	if threshold != nil {
		t = *threshold
	}
	kc := KeyConfig{Threshold: t, PublicKeys: keys, NextKeyDigest: nextKeyDigest}
	if err := kc.Validate(); err != nil {
		return KeyConfig{}, err
	}
	return kc, nil
}

// Validate checks the 1 <= threshold <= len(public_keys) invariant from
// spec.md §3.
func (kc KeyConfig) Validate() error {
	if kc.Threshold < 1 || kc.Threshold > uint64(len(kc.PublicKeys)) {
		return kerierr.Semantic("keyconfig: threshold %d out of range for %d keys", kc.Threshold, len(kc.PublicKeys))
	}
	return nil
}

// Verify checks sigs against message using this KeyConfig's public keys,
// indexed by each signature's declared position, per spec.md §4.3:
//   - reject if count < threshold (NotEnoughSigsError)
//   - reject if count > len(public_keys) or any index repeats (SemanticError)
//   - accept iff every signature verifies under the key at its index
func (kc KeyConfig) Verify(message []byte, sigs []prefix.AttachedSignature) error {
	if uint64(len(sigs)) < kc.Threshold {
		return kerierr.NotEnoughSigs("keyconfig: have %d signatures, need %d", len(sigs), kc.Threshold)
	}
	if len(sigs) > len(kc.PublicKeys) {
		return kerierr.Semantic("keyconfig: %d signatures exceeds %d keys", len(sigs), len(kc.PublicKeys))
	}
	seen := make(map[uint16]bool, len(sigs))
	for _, sig := range sigs {
		if seen[sig.Index()] {
			return kerierr.Semantic("keyconfig: duplicate signature index %d", sig.Index())
		}
		seen[sig.Index()] = true
	}
	for _, sig := range sigs {
		if int(sig.Index()) >= len(kc.PublicKeys) {
			return kerierr.Semantic("keyconfig: signature index %d not present in key set", sig.Index())
		}
		key := kc.PublicKeys[sig.Index()]
		ok, err := key.Verify(message, sig.Raw())
		if err != nil {
			return kerierr.Crypto("keyconfig: %v", err)
		}
		if !ok {
			return kerierr.Semantic("keyconfig: invalid signature at index %d", sig.Index())
		}
	}
	return nil
}

// Commit computes the next-key XOR-fold digest for this KeyConfig under
// hashAlg, per spec.md §4.3:
//  1. acc = hashAlg(hex(threshold))
//  2. for each key in order: acc = acc XOR hashAlg(encoded_key)
//  3. emit acc tagged with hashAlg
func (kc KeyConfig) Commit(hashCode derivation.Code) (prefix.SelfAddressing, error) {
	return NxtCommitment(kc.Threshold, kc.PublicKeys, hashCode)
}

// NxtCommitment implements the XOR-fold commitment directly over a
// threshold and key list, independent of any existing KeyConfig, mirroring
// the keriox free function nxt_commitment used both for computing and
// re-verifying next-key digests.
func NxtCommitment(threshold uint64, keys []prefix.Basic, hashCode derivation.Code) (prefix.SelfAddressing, error) {
	alg, err := derivation.HashAlgFor(hashCode)
	if err != nil {
		return prefix.SelfAddressing{}, err
	}
	acc := alg.Sum([]byte(fmt.Sprintf("%x", threshold)))
	for _, key := range keys {
		h := alg.Sum([]byte(key.String()))
		acc = xorBytes(acc, h)
	}
	return prefix.NewSelfAddressing(hashCode, acc)
}

// VerifyNext reports whether next's commitment under this KeyConfig's own
// next-key digest algorithm equals NextKeyDigest, i.e. that next is
// genuinely the pre-committed successor key set.
func (kc KeyConfig) VerifyNext(next KeyConfig) bool {
	commitment, err := next.Commit(kc.NextKeyDigest.Code())
	if err != nil {
		return false
	}
	return kc.NextKeyDigest.Equal(commitment)
}

// xorBytes XORs two equal-length byte slices, returning a new slice. Digest
// algorithms in this table all produce fixed-width output so a and b are
// always the same length here.
func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i%len(b)]
	}
	return out
}
