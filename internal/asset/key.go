// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultChainID is Ethereum mainnet. A Key with a zero ChainID resolves to it.
const DefaultChainID uint64 = 1

// ErrInvalidKey is returned for keys that cannot identify an asset.
var ErrInvalidKey = errors.New("invalid asset key")

// Key is the composite identity of a gated asset. Two keys that are equal after
// Normalize refer to the same asset.
type Key struct {
	Variant  Variant `json:"variant" yaml:"variant"`
	TokenID  string  `json:"tokenId" yaml:"tokenId"`
	Wallet   string  `json:"wallet" yaml:"wallet"`
	Contract string  `json:"contract" yaml:"contract"`
	ChainID  uint64  `json:"chainId,omitempty" yaml:"chainId,omitempty"`
}

// NewKey builds a normalized, validated key. chainID is optional.
func NewKey(variant, tokenID, wallet, contract string, chainID ...uint64) (Key, error) {
	v, err := ParseVariant(variant)
	if err != nil {
		return Key{}, err
	}

	k := Key{
		Variant:  v,
		TokenID:  tokenID,
		Wallet:   wallet,
		Contract: contract,
	}
	if len(chainID) > 0 {
		k.ChainID = chainID[0]
	}

	k = k.Normalize()
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// Normalize returns a copy with trimmed fields, the default chain applied,
// leading zeros stripped from the token id and well-formed hex addresses
// lower-cased.
func (k Key) Normalize() Key {
	k.Variant = Variant(strings.ToLower(strings.TrimSpace(string(k.Variant))))
	if v, ok := variantAliases[string(k.Variant)]; ok {
		k.Variant = v
	}
	k.TokenID = CleanTokenID(k.TokenID)
	k.Wallet = NormalizeAddress(k.Wallet)
	k.Contract = NormalizeAddress(k.Contract)
	if k.ChainID == 0 {
		k.ChainID = DefaultChainID
	}
	return k
}

// Validate checks that every required field is present.
func (k Key) Validate() error {
	switch {
	case k.Variant == "":
		return fmt.Errorf("variant is required: %w", ErrInvalidKey)
	case !k.Variant.Valid():
		return fmt.Errorf("unknown variant %q: %w", k.Variant, ErrInvalidKey)
	case k.TokenID == "":
		return fmt.Errorf("token id is required: %w", ErrInvalidKey)
	case !isDigits(k.TokenID):
		return fmt.Errorf("token id %q is not a decimal number: %w", k.TokenID, ErrInvalidKey)
	case k.Wallet == "":
		return fmt.Errorf("wallet is required: %w", ErrInvalidKey)
	case k.Contract == "":
		return fmt.Errorf("contract is required: %w", ErrInvalidKey)
	}
	return nil
}

// String is the cache identity of the key. Callers should Normalize first.
// Each field is path-escaped, so a "/" inside a wallet or contract can never
// be mistaken for a field boundary.
func (k Key) String() string {
	chain := k.ChainID
	if chain == 0 {
		chain = DefaultChainID
	}
	return strings.Join([]string{
		url.PathEscape(string(k.Variant)),
		url.PathEscape(k.TokenID),
		url.PathEscape(k.Wallet),
		url.PathEscape(k.Contract),
		strconv.FormatUint(chain, 10),
	}, "/")
}

// FileName is the download name for the asset. An empty name falls back to
// the token id.
func (k Key) FileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = k.TokenID
	}
	name = strings.NewReplacer("/", "-", "\\", "-").Replace(name)
	return name + k.Variant.Extension()
}

// CleanTokenID trims and strips leading zeros, keeping a lone "0".
func CleanTokenID(id string) string {
	id = strings.TrimSpace(id)
	trimmed := strings.TrimLeft(id, "0")
	if trimmed == "" && id != "" {
		return "0"
	}
	return trimmed
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
