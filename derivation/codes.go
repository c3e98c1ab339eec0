// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package derivation maps KERI derivation codes onto concrete hash and
// signature algorithms. It is the oracle the prefix and keyconfig packages
// derive digests and verify signatures through; the elliptic-curve and hash
// primitives themselves are treated as external collaborators reached
// through this table, per the core's out-of-scope boundary.
package derivation

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/crypto/blake256"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Code is a derivation code: one, two or four base64-url characters prefixed onto
// the encoded form of a prefix, identifying both the raw byte length of the
// derivative and the algorithm used to produce it.
type Code string

// Basic derivation codes. Every code except CodeEd25519NT is transferable
// (see IsTransferable).
const (
	CodeEd25519          Code = "D" // Ed25519 public key, transferable
	CodeEd25519NT        Code = "B" // Ed25519 public key, non-transferable
	CodeECDSAsecp256k1   Code = "1AAA"
	CodeSchnorrSecp256k1 Code = "1AAB"
)

// Digest (self-addressing) derivation codes.
const (
	CodeBlake3_256  Code = "E"
	CodeBlake2b256  Code = "F"
	CodeBlake2s256  Code = "G"
	CodeSHA3_256    Code = "H"
	CodeSHA2_256    Code = "I"
	CodeSHA2_512    Code = "0D"
	CodeSHA3_512    Code = "0E"
)

// Signature (self-signing / attached) derivation codes.
const (
	CodeEd25519Sig          Code = "0B"
	CodeECDSASecp256k1Sig   Code = "0C"
	CodeSchnorrSecp256k1Sig Code = "0F"
)

// codeLens gives the raw (pre-base64) byte length for each derivation code.
var codeLens = map[Code]int{
	CodeEd25519:             32,
	CodeEd25519NT:           32,
	CodeECDSAsecp256k1:      33,
	CodeSchnorrSecp256k1:    32,
	CodeBlake3_256:          32,
	CodeBlake2b256:          32,
	CodeBlake2s256:          32,
	CodeSHA3_256:            32,
	CodeSHA2_256:            32,
	CodeSHA2_512:            64,
	CodeSHA3_512:            64,
	CodeEd25519Sig:          64,
	CodeECDSASecp256k1Sig:   64,
	CodeSchnorrSecp256k1Sig: 64,
}

// RawLen returns the expected raw byte length of the derivative for code, or
// an error if the code is unknown.
func RawLen(c Code) (int, error) {
	n, ok := codeLens[c]
	if !ok {
		return 0, fmt.Errorf("derivation: unknown code %q", c)
	}
	return n, nil
}

// IsTransferable reports whether a basic key under this code may be
// rotated away from (true) or is a one-time non-transferable key (false).
func IsTransferable(c Code) bool {
	return c != CodeEd25519NT
}

// HashAlg is a digest oracle: it reduces a byte payload to the raw digest
// bytes for its derivation code.
type HashAlg struct {
	code Code
	new  func() hash.Hash
}

// hashAlgs is the digest-algorithm table, keyed by derivation code.
var hashAlgs = map[Code]HashAlg{
	CodeSHA2_256: {CodeSHA2_256, sha256.New},
	CodeSHA2_512: {CodeSHA2_512, sha512.New},
	CodeSHA3_256: {CodeSHA3_256, sha3.New256},
	CodeSHA3_512: {CodeSHA3_512, sha3.New512},
	CodeBlake2b256: {CodeBlake2b256, func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	}},
	CodeBlake2s256: {CodeBlake2s256, blake256.New},
}

// HashAlgFor resolves the digest oracle for a derivation code. Blake3_256 is
// special-cased: lukechampine.com/blake3 exposes a constructor rather than a
// stdlib-shaped hash.Hash factory with fixed output size, so it is derived
// directly in Sum rather than through the hash.Hash table.
func HashAlgFor(c Code) (HashAlg, error) {
	if c == CodeBlake3_256 {
		return HashAlg{code: c}, nil
	}
	alg, ok := hashAlgs[c]
	if !ok {
		return HashAlg{}, fmt.Errorf("derivation: %q is not a digest code", c)
	}
	return alg, nil
}

// Code returns the derivation code this hash algorithm was resolved for.
func (h HashAlg) Code() Code { return h.code }

// Sum computes the raw digest of data under this algorithm.
func (h HashAlg) Sum(data []byte) []byte {
	if h.code == CodeBlake3_256 {
		sum := blake3.Sum256(data)
		return sum[:]
	}
	hh := h.new()
	hh.Write(data)
	return hh.Sum(nil)
}

// SigAlg is a signature oracle: it verifies a signature over a message
// against a raw public key.
type SigAlg struct {
	code   Code
	verify func(pub, msg, sig []byte) (bool, error)
}

var sigAlgs = map[Code]SigAlg{
	CodeEd25519Sig: {CodeEd25519Sig, verifyEd25519},
	CodeECDSASecp256k1Sig: {CodeECDSASecp256k1Sig, verifyECDSASecp256k1},
	CodeSchnorrSecp256k1Sig: {CodeSchnorrSecp256k1Sig, verifySchnorrSecp256k1},
}

// SigAlgFor resolves the signature oracle for a derivation code.
func SigAlgFor(c Code) (SigAlg, error) {
	alg, ok := sigAlgs[c]
	if !ok {
		return SigAlg{}, fmt.Errorf("derivation: %q is not a signature code", c)
	}
	return alg, nil
}

// Code returns the derivation code this signature algorithm was resolved
// for.
func (s SigAlg) Code() Code { return s.code }

// Verify checks sig over msg against the raw public key pub.
func (s SigAlg) Verify(pub, msg, sig []byte) (bool, error) {
	return s.verify(pub, msg, sig)
}

func verifyEd25519(pub, msg, sig []byte) (bool, error) {
	if len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("derivation: bad ed25519 key length %d", len(pub))
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig), nil
}

func verifyECDSASecp256k1(pub, msg, sig []byte) (bool, error) {
	pk, err := btcec.ParsePubKey(pub)
	if err != nil {
		return false, err
	}
	s, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false, err
	}
	digest := sha256.Sum256(msg)
	return s.Verify(digest[:], pk), nil
}

func verifySchnorrSecp256k1(pub, msg, sig []byte) (bool, error) {
	pk, err := schnorr.ParsePubKey(pub)
	if err != nil {
		return false, err
	}
	s, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false, err
	}
	digest := sha256.Sum256(msg)
	return s.Verify(digest[:], pk), nil
}
