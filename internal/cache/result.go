// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"

	"github.com/staranto/assetctl/internal/asset"
)

// Status is the outcome of a request. The zero value is StatusUnavailable.
type Status int

const (
	// StatusUnavailable covers not-found, server and network failures and
	// timeouts. Retrying later may succeed.
	StatusUnavailable Status = iota
	// StatusDenied means the wallet does not own the token.
	StatusDenied
	// StatusReady means Handle is usable.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusDenied:
		return "denied"
	default:
		return "unavailable"
	}
}

// MarshalText renders the status name in json and yaml output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ready":
		*s = StatusReady
	case "denied":
		*s = StatusDenied
	case "unavailable":
		*s = StatusUnavailable
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// Result is what a request resolves to. Handle is nil unless Status is
// StatusReady. Err holds the underlying cause for denial and unavailability.
type Result struct {
	Key    asset.Key
	Status Status
	Handle *Handle
	Err    error
}

// Ready reports whether Handle is usable.
func (r Result) Ready() bool {
	return r.Status == StatusReady && r.Handle != nil
}

// Retryable reports whether asking again later could change the outcome.
func (r Result) Retryable() bool {
	return r.Status == StatusUnavailable
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", r.Key, r.Status, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Key, r.Status)
}
