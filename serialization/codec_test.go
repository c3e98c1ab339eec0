// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package serialization

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestVersionStringRoundTrip(t *testing.T) {
	vs := New(JSON, 345)
	s := vs.String()
	require.Equal(t, "KERI10JSON000159_", s)

	parsed, err := Parse(s)
	require.NoError(t, err)
	require.Equal(t, vs, parsed)
}

func TestVersionStringMalformed(t *testing.T) {
	_, err := Parse("not-a-version-string")
	require.Error(t, err)
}

type sizedDoc struct {
	Vs      string `json:"vs" cbor:"vs"`
	Payload string `json:"payload" cbor:"payload"`
}

func TestEncodeSizedProducesMatchingLength(t *testing.T) {
	for _, format := range []Format{JSON, CBOR} {
		var w sizedDoc
		w.Payload = "some field whose length affects the header only, not itself"
		raw, err := EncodeSized(format,
			func(vs string) { w.Vs = vs },
			func() ([]byte, error) { return Marshal(format, w) })
		require.NoError(t, err, "format %s", format)

		vs, err := Parse(w.Vs)
		require.NoError(t, err)
		require.Equal(t, len(raw), vs.Size, "version-string size field must equal encoded length")

		var decoded sizedDoc
		require.NoError(t, Unmarshal(format, raw, &decoded))
		require.Equal(t, w.Payload, decoded.Payload)
	}
}

func TestEncodeSizedRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := rapid.StringN(0, 64, -1).Draw(rt, "payload")
		format := rapid.SampledFrom([]Format{JSON, CBOR}).Draw(rt, "format")

		var w sizedDoc
		w.Payload = payload
		raw, err := EncodeSized(format,
			func(vs string) { w.Vs = vs },
			func() ([]byte, error) { return Marshal(format, w) })
		require.NoError(rt, err)

		vs, err := Parse(w.Vs)
		require.NoError(rt, err)
		require.Equal(rt, len(raw), vs.Size)
	})
}

func TestHexCompactJSONRoundTrip(t *testing.T) {
	h := HexCompact(4095)
	b, err := Marshal(JSON, h)
	require.NoError(t, err)
	require.Equal(t, `"fff"`, string(b))

	var decoded HexCompact
	require.NoError(t, Unmarshal(JSON, b, &decoded))
	require.Equal(t, h, decoded)
}

func TestHexCompactCBORRoundTrip(t *testing.T) {
	h := HexCompact(255)
	b, err := Marshal(CBOR, h)
	require.NoError(t, err)

	var decoded HexCompact
	require.NoError(t, Unmarshal(CBOR, b, &decoded))
	require.Equal(t, h, decoded)
}
