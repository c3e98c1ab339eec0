// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prefix

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/keri/derivation"
)

func TestBasicRoundTrip(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	b, err := NewBasic(derivation.CodeEd25519, raw)
	require.NoError(t, err)

	decoded, err := ParseBasic(b.String())
	require.NoError(t, err)
	require.True(t, b.Equal(decoded))
	require.Equal(t, b.String(), decoded.String())
}

func TestSelfAddressingVerifyBinding(t *testing.T) {
	payload := []byte("hello keri")
	d, err := DeriveSelfAddressing(derivation.CodeSHA2_256, payload)
	require.NoError(t, err)
	require.True(t, d.VerifyBinding(payload))
	require.False(t, d.VerifyBinding([]byte("tampered")))

	want := sha256.Sum256(payload)
	require.Equal(t, want[:], d.Raw())
}

func TestSelfAddressingRoundTrip(t *testing.T) {
	d, err := DeriveSelfAddressing(derivation.CodeBlake3_256, []byte("payload"))
	require.NoError(t, err)

	decoded, err := ParseSelfAddressing(d.String())
	require.NoError(t, err)
	require.True(t, d.Equal(decoded))
}

func TestAttachedSignatureRoundTrip(t *testing.T) {
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = byte(i * 3)
	}
	sig, err := NewAttachedSignature(derivation.CodeEd25519Sig, 2, raw)
	require.NoError(t, err)

	decoded, n, err := ParseAttachedSignature(sig.String())
	require.NoError(t, err)
	require.Equal(t, len(sig.String()), n)
	require.Equal(t, uint16(2), decoded.Index())
	require.Equal(t, sig.Raw(), decoded.Raw())
}

func TestAttachedSignatureIndexRange(t *testing.T) {
	raw := make([]byte, 64)
	for _, idx := range []uint16{0, 1, 63, 64, 65, 4095} {
		sig, err := NewAttachedSignature(derivation.CodeEd25519Sig, idx, raw)
		require.NoError(t, err)
		decoded, _, err := ParseAttachedSignature(sig.String())
		require.NoError(t, err)
		require.Equal(t, idx, decoded.Index())
	}
}

func TestBadCode(t *testing.T) {
	_, err := ParseBasic("?not-a-valid-prefix")
	require.ErrorIs(t, err, ErrBadCode)
}

func TestCountCodeRoundTrip(t *testing.T) {
	header := EncodeCountCode(AttachedSigTag, 3)
	n, consumed, err := DecodeCountCode(AttachedSigTag, header+"trailing")
	require.NoError(t, err)
	require.Equal(t, uint16(3), n)
	require.Equal(t, 4, consumed)
}

func TestIdentifierPrefixDefault(t *testing.T) {
	var p IdentifierPrefix
	require.True(t, p.IsDefault())
	require.Equal(t, "", p.String())

	parsed, err := ParseIdentifier("")
	require.NoError(t, err)
	require.True(t, parsed.IsDefault())
}
