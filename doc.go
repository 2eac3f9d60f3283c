// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// assetctl is the command line front end of the secure asset cache. It wires
// the CLI, delegates to internal packages, and serves as the entry point.
package main
