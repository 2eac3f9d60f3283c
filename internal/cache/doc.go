// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache implements the secure asset cache: an in-memory, process
// lifetime store of ownership-gated asset content.
//
// A Cache hands out Handles. Each Handle is owned by the cache entry that
// created it and is released when that entry is evicted or the cache is
// cleared. Consumers borrow handles and must not hold on to them across a
// Clear. Concurrent requests for the same key share a single backend fetch.
package cache
