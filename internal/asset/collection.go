// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"fmt"
	"sort"
	"strings"
)

// Collection is a known NFT contract and the chain it lives on.
type Collection struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Contract string `json:"contract" yaml:"contract"`
	ChainID  uint64 `json:"chainId" yaml:"chain_id"`
}

// Built-in collections. Entries from the config file override these by id.
var builtinCollections = []Collection{
	{
		ID:       "toxic-skulls-club",
		Name:     "Toxic Skulls Club",
		Contract: "0x5ca8dd7f8e1ee6d0c27a7be6d9f33ef403fbcdd8",
		ChainID:  1,
	},
	{
		ID:       "skulls-on-ape",
		Name:     "Skulls on Ape",
		Contract: "0x20e3c7d2ecd264615b57478ebc52acdcc5d92e37",
		ChainID:  33139, //nolint:mnd
	},
	{
		ID:       "skulls-of-mayhem",
		Name:     "Skulls of Mayhem",
		Contract: "0x32e14d6f3dda2b95e505b14eb4552fd3eeaa1f0d",
		ChainID:  1,
	},
}

// Registry resolves collection ids.
type Registry struct {
	byID map[string]Collection
}

// NewRegistry returns a registry holding the built-in collections overlaid
// with extra.
func NewRegistry(extra ...Collection) *Registry {
	r := &Registry{byID: make(map[string]Collection)}
	for _, c := range builtinCollections {
		r.byID[c.ID] = c
	}
	for _, c := range extra {
		c.ID = strings.ToLower(strings.TrimSpace(c.ID))
		if c.ID == "" {
			continue
		}
		c.Contract = NormalizeAddress(c.Contract)
		if c.ChainID == 0 {
			c.ChainID = DefaultChainID
		}
		r.byID[c.ID] = c
	}
	return r
}

// Lookup finds a collection by id, case-insensitively.
func (r *Registry) Lookup(id string) (Collection, error) {
	c, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Collection{}, fmt.Errorf("unknown collection %q (known: %s)", id, strings.Join(r.IDs(), ", "))
	}
	return c, nil
}

// IDs returns the sorted collection ids.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
