// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/backend"
)

func TestHandle(t *testing.T) {
	k := key(asset.VariantTransparent, "42", "0xA")
	h, err := newHandle(k, backend.Payload{Data: []byte("skull"), ContentType: "image/png"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(h.ID(), "bafkrei"), h.ID())
	assert.Equal(t, k, h.Key())
	assert.Equal(t, "image/png", h.ContentType())
	assert.Equal(t, 5, h.Size())
	assert.False(t, h.Released())
	assert.Contains(t, h.String(), h.ID())

	b, err := h.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("skull"), b)

	// Bytes hands out a copy.
	b[0] = 'X'
	again, _ := h.Bytes()
	assert.Equal(t, []byte("skull"), again)

	rc, err := h.Open()
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "skull", string(got))

	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "skull", buf.String())
}

func TestHandle_SameContentSameID(t *testing.T) {
	a, err := newHandle(key(asset.VariantGLB, "1", "0xA"), backend.Payload{Data: []byte("same")})
	require.NoError(t, err)
	b, err := newHandle(key(asset.VariantGLB, "1", "0xB"), backend.Payload{Data: []byte("same")})
	require.NoError(t, err)
	c, err := newHandle(key(asset.VariantGLB, "1", "0xA"), backend.Payload{Data: []byte("other")})
	require.NoError(t, err)

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestHandle_Release(t *testing.T) {
	h, err := newHandle(key(asset.VariantFBX, "1", "0xA"), backend.Payload{Data: []byte("mesh")})
	require.NoError(t, err)

	h.release()
	h.release()

	assert.True(t, h.Released())
	assert.Equal(t, 4, h.Size())

	_, err = h.Bytes()
	assert.ErrorIs(t, err, ErrReleased)
	_, err = h.Open()
	assert.ErrorIs(t, err, ErrReleased)
	_, err = h.WriteTo(io.Discard)
	assert.ErrorIs(t, err, ErrReleased)
}

func TestStatus_Text(t *testing.T) {
	for _, s := range []Status{StatusUnavailable, StatusDenied, StatusReady} {
		b, err := s.MarshalText()
		require.NoError(t, err)

		var got Status
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}

	var s Status
	assert.Equal(t, "unavailable", s.String())
	assert.Error(t, s.UnmarshalText([]byte("maybe")))
}

func TestResult(t *testing.T) {
	assert.False(t, Result{Status: StatusReady}.Ready(), "ready without a handle")
	assert.True(t, Result{}.Retryable())
	assert.False(t, Result{Status: StatusDenied}.Retryable())

	r := Result{Key: key(asset.VariantGLB, "1", "0xA"), Status: StatusDenied, Err: backend.ErrDenied}
	assert.Contains(t, r.String(), "denied")
}
