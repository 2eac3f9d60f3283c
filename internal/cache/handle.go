// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/backend"
)

// ErrReleased is returned when reading a handle whose entry was evicted or
// cleared.
var ErrReleased = errors.New("asset handle released")

// Handle is a process-local reference to downloaded asset content. It is
// immutable after creation and only the cache releases it.
type Handle struct {
	id          cid.Cid
	key         asset.Key
	contentType string
	size        int

	mu       sync.RWMutex
	data     []byte
	released bool
}

func newHandle(key asset.Key, p backend.Payload) (*Handle, error) {
	sum, err := multihash.Sum(p.Data, multihash.SHA2_256, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to hash content: %w", err)
	}

	return &Handle{
		id:          cid.NewCidV1(cid.Raw, sum),
		key:         key,
		contentType: p.ContentType,
		size:        len(p.Data),
		data:        p.Data,
	}, nil
}

// ID is the CIDv1 (raw, sha2-256) of the content.
func (h *Handle) ID() string { return h.id.String() }

// Key is the asset the handle was resolved for.
func (h *Handle) Key() asset.Key { return h.key }

// ContentType of the content as declared by the backend.
func (h *Handle) ContentType() string { return h.contentType }

// Size in bytes. Still reported after release.
func (h *Handle) Size() int { return h.size }

// Released reports whether the owning entry has let go of the content.
func (h *Handle) Released() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.released
}

// Bytes returns a copy of the content.
func (h *Handle) Bytes() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released {
		return nil, ErrReleased
	}
	out := make([]byte, len(h.data))
	copy(out, h.data)
	return out, nil
}

// Open returns a reader over the content as it was when Open was called.
func (h *Handle) Open() (io.ReadCloser, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released {
		return nil, ErrReleased
	}
	return io.NopCloser(bytes.NewReader(h.data)), nil
}

// WriteTo implements io.WriterTo.
func (h *Handle) WriteTo(w io.Writer) (int64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released {
		return 0, ErrReleased
	}
	n, err := w.Write(h.data)
	return int64(n), err
}

func (h *Handle) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", h.ID(), h.key, h.size)
}

// release drops the content. Safe to call more than once.
func (h *Handle) release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = nil
	h.released = true
}
