// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package export writes asset content to stdout, the local filesystem or S3.
package export
