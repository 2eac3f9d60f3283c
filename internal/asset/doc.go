// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package asset defines the identity of gated NFT assets: the variant kinds,
// the composite key used by the cache and the backend, address handling and
// the collection registry.
package asset
