// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/backend"
)

// assetQuery is the ownership tuple sent alongside the asset path.
type assetQuery struct {
	Wallet   string `url:"wallet"`
	Contract string `url:"contract"`
	ChainID  uint64 `url:"chainId"`
}

// URL returns the request URL for key.
func (be *BackendRemote) URL(key asset.Key) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}

	q, err := query.Values(assetQuery{
		Wallet:   key.Wallet,
		Contract: key.Contract,
		ChainID:  key.ChainID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}

	u := be.BaseURL.JoinPath(be.Path, string(key.Variant), url.PathEscape(key.TokenID))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch retrieves the asset for key. A 403 maps to backend.ErrDenied, a 404 to
// backend.ErrNotFound and any other failure status to *backend.StatusError.
func (be *BackendRemote) Fetch(ctx context.Context, key asset.Key) (backend.Payload, error) {
	key = key.Normalize()

	target, err := be.URL(key)
	if err != nil {
		return backend.Payload{}, err
	}

	if be.limiter != nil {
		if err := be.limiter.Wait(ctx); err != nil {
			return backend.Payload{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return backend.Payload{}, fmt.Errorf("failed to create request: %w", err)
	}
	if be.Token != "" {
		req.Header.Set("Authorization", "Bearer "+be.Token)
	}
	if be.UserAgent != "" {
		req.Header.Set("User-Agent", be.UserAgent)
	}
	req.Header.Set("Accept", key.Variant.ContentType()+", */*;q=0.8")

	resp, err := be.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return backend.Payload{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return backend.Payload{}, fmt.Errorf("%s: %w", reasonOrDefault(resp, "forbidden"), backend.ErrDenied)
	case http.StatusNotFound:
		return backend.Payload{}, fmt.Errorf("%s: %w", reasonOrDefault(resp, key.String()), backend.ErrNotFound)
	default:
		return backend.Payload{}, &backend.StatusError{
			StatusCode: resp.StatusCode,
			Reason:     errorReason(resp),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, be.MaxBytes+1))
	if err != nil {
		return backend.Payload{}, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > be.MaxBytes {
		return backend.Payload{}, fmt.Errorf("%s over %s: %w", key, humanize.IBytes(uint64(be.MaxBytes)), ErrBodyTooLarge)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = key.Variant.ContentType()
	}

	log.Debugf("fetched %s (%s, %s)", key, contentType, humanize.IBytes(uint64(len(data))))

	return backend.Payload{Data: data, ContentType: contentType}, nil
}

// errorReason pulls a short message out of a JSON error body, if there is one.
func errorReason(resp *http.Response) string {
	if !strings.Contains(resp.Header.Get("Content-Type"), "json") {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:mnd
	if err != nil || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"error", "message", "error.message"} {
		if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String {
			return r.String()
		}
	}
	return ""
}

func reasonOrDefault(resp *http.Response, def string) string {
	if r := errorReason(resp); r != "" {
		return r
	}
	return def
}
