// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

// Package backend defines the contract with the asset-authorization service:
// given an asset key it either returns the binary content, reports that the
// wallet does not own the token, or reports that the asset is unavailable.
// The remote subpackage implements it over HTTP.
package backend
