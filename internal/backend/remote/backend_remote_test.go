// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/backend"
)

var testKey = asset.Key{
	Variant:  asset.VariantTransparent,
	TokenID:  "42",
	Wallet:   "0xA",
	Contract: "0xC",
	ChainID:  1,
}

func newTestBackend(t *testing.T, h http.HandlerFunc, opts ...Option) *BackendRemote {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithRetries(0, time.Millisecond, time.Millisecond)}, opts...)
	be, err := NewBackendRemote(srv.URL, opts...)
	require.NoError(t, err)
	return be
}

func TestNewBackendRemote_Validation(t *testing.T) {
	_, err := NewBackendRemote("")
	assert.ErrorIs(t, err, ErrBaseURLNotSet)

	_, err = NewBackendRemote("ftp://example.com")
	assert.ErrorIs(t, err, ErrBaseURLInvalid)

	_, err = NewBackendRemote("/relative")
	assert.ErrorIs(t, err, ErrBaseURLInvalid)

	be, err := NewBackendRemote("https://assets.example.com/", WithPath("v2/gated/"), WithToken("s3cret"))
	require.NoError(t, err)
	assert.Equal(t, "/v2/gated", be.Path)
	assert.NotContains(t, be.String(), "s3cret")
}

func TestURL(t *testing.T) {
	be, err := NewBackendRemote("https://assets.example.com/base")
	require.NoError(t, err)

	got, err := be.URL(testKey)
	require.NoError(t, err)
	assert.Equal(t, "https://assets.example.com/base/api/secure-image/toxic-transparent/42?chainId=1&contract=0xC&wallet=0xA", got)
}

func TestURL_RejectsTokenPathSegments(t *testing.T) {
	be, err := NewBackendRemote("https://assets.example.com/base")
	require.NoError(t, err)

	var hits atomic.Int32
	srv := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	for _, tok := range []string{"..", "../..", "42/.."} {
		k := testKey
		k.TokenID = tok

		_, err := be.URL(k)
		assert.ErrorIs(t, err, asset.ErrInvalidKey, tok)

		_, err = srv.Fetch(context.Background(), k)
		assert.ErrorIs(t, err, asset.ErrInvalidKey, tok)
	}
	assert.Zero(t, hits.Load())
}

func TestFetch_Success(t *testing.T) {
	var gotAuth, gotPath, gotWallet string
	be := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotWallet = r.URL.Query().Get("wallet")
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("pixels"))
	}, WithToken("tkn"))

	p, err := be.Fetch(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), p.Data)
	assert.Equal(t, "image/webp", p.ContentType)
	assert.Equal(t, "Bearer tkn", gotAuth)
	assert.Equal(t, "/api/secure-image/toxic-transparent/42", gotPath)
	assert.Equal(t, "0xA", gotWallet)
}

func TestFetch_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(*testing.T, error)
	}{
		{
			name:   "forbidden is denial",
			status: http.StatusForbidden,
			body:   `{"error":"wallet does not hold token 42"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, backend.IsDenied(err))
				assert.Contains(t, err.Error(), "does not hold token 42")
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"message":"no such asset"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, backend.IsNotFound(err))
				assert.False(t, backend.IsDenied(err))
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `{"error":"upstream down"}`,
			check: func(t *testing.T, err error) {
				var se *backend.StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusBadGateway, se.StatusCode)
				assert.Equal(t, "upstream down", se.Reason)
				assert.True(t, se.Temporary())
			},
		},
		{
			name:   "unauthorized is not a denial",
			status: http.StatusUnauthorized,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				var se *backend.StatusError
				require.True(t, errors.As(err, &se))
				assert.Empty(t, se.Reason)
				assert.False(t, se.Temporary())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := be.Fetch(context.Background(), testKey)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestFetch_RetriesTransientButNotDenial(t *testing.T) {
	var calls atomic.Int32
	be := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}, WithRetries(2, time.Millisecond, 2*time.Millisecond))

	p, err := be.Fetch(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), p.Data)
	assert.Equal(t, int32(2), calls.Load())

	var denied atomic.Int32
	be = newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		denied.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}, WithRetries(3, time.Millisecond, 2*time.Millisecond))

	_, err = be.Fetch(context.Background(), testKey)
	assert.True(t, backend.IsDenied(err))
	assert.Equal(t, int32(1), denied.Load())
}

func TestFetch_FallbackContentTypeAndSizeLimit(t *testing.T) {
	be := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("0123456789"))
	}, WithMaxBytes(16))

	glb := testKey
	glb.Variant = asset.VariantGLB
	p, err := be.Fetch(context.Background(), glb)
	require.NoError(t, err)
	assert.Equal(t, "model/gltf-binary", p.ContentType)

	be.MaxBytes = 4
	_, err = be.Fetch(context.Background(), glb)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestFetch_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	be := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := be.Fetch(ctx, testKey)
	require.Error(t, err)
	assert.False(t, backend.IsDenied(err))
}

func TestResolveToken(t *testing.T) {
	t.Setenv("ASSETCTL_TOKEN", "")
	assert.Equal(t, "cfg", ResolveToken("cfg"))

	t.Setenv("ASSETCTL_TOKEN", "env")
	assert.Equal(t, "env", ResolveToken("cfg"))
}
