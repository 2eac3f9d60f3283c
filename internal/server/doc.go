// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package server exposes a cache over a small local HTTP API so page
// renderers can pull ownership-gated assets by URL.
package server
