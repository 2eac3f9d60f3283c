// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/staranto/assetctl/internal/asset"
)

// Backend fetches the gated content for a key after verifying ownership.
// Implementations must be safe for concurrent use.
type Backend interface {
	Fetch(ctx context.Context, key asset.Key) (Payload, error)
	String() string
}

// Payload is the binary content of one asset.
type Payload struct {
	Data        []byte
	ContentType string
}

// Sentinel errors for the outcomes callers need to tell apart. Use errors.Is;
// implementations wrap these with context.
var (
	ErrDenied   = errors.New("not authorized: wallet does not own token")
	ErrNotFound = errors.New("asset not found")
)

// StatusError is any other non-success response from the service.
type StatusError struct {
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Temporary reports whether retrying later could succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsDenied reports whether err is an ownership denial.
func IsDenied(err error) bool { return errors.Is(err, ErrDenied) }

// IsNotFound reports whether err means the asset does not exist.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Func adapts a function to the Backend interface.
type Func func(ctx context.Context, key asset.Key) (Payload, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, key asset.Key) (Payload, error) {
	return f(ctx, key)
}

func (f Func) String() string {
	return "BackendFunc"
}
