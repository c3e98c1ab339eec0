// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package derivation

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAlgDeterministic(t *testing.T) {
	for _, code := range []Code{CodeSHA2_256, CodeSHA2_512, CodeSHA3_256, CodeSHA3_512, CodeBlake2b256, CodeBlake3_256} {
		alg, err := HashAlgFor(code)
		require.NoError(t, err, "code %s", code)
		n, err := RawLen(code)
		require.NoError(t, err)

		sum1 := alg.Sum([]byte("the rain in spain"))
		sum2 := alg.Sum([]byte("the rain in spain"))
		require.Equal(t, sum1, sum2, "code %s must be deterministic", code)
		require.Len(t, sum1, n)
	}
}

func TestHashAlgUnknownCode(t *testing.T) {
	_, err := HashAlgFor(Code("??"))
	require.Error(t, err)
}

func TestSigAlgEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	msg := []byte("event bytes")
	sig := ed25519.Sign(priv, msg)

	alg, err := SigAlgFor(CodeEd25519Sig)
	require.NoError(t, err)

	ok, err := alg.Verify(pub, msg, sig)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = alg.Verify(pub, []byte("tampered"), sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsTransferable(t *testing.T) {
	require.True(t, IsTransferable(CodeEd25519))
	require.False(t, IsTransferable(CodeEd25519NT))
}
