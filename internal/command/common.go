// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/backend/remote"
	"github.com/staranto/assetctl/internal/cache"
	"github.com/staranto/assetctl/internal/config"
	"github.com/staranto/assetctl/internal/meta"
	"github.com/staranto/assetctl/internal/version"
)

const defaultPreloadConcurrency = 8

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr assetctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "assetctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// LoadRegistry builds the collection registry from the built-ins and the
// collections mapping of the config file.
func LoadRegistry() *asset.Registry {
	raw, err := config.GetStringMap("collections")
	if err != nil {
		return asset.NewRegistry()
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	extra := make([]asset.Collection, 0, len(ids))
	for _, id := range ids {
		prefix := "collections." + id + "."
		contract, err := config.GetString(prefix + "contract")
		if err != nil {
			log.WithError(err).Warnf("skipping collection %s", id)
			continue
		}
		chain, _ := config.GetInt(prefix+"chain_id", int(asset.DefaultChainID))
		name, _ := config.GetString(prefix+"name", id)
		extra = append(extra, asset.Collection{
			ID:       id,
			Name:     name,
			Contract: contract,
			ChainID:  uint64(chain), //nolint:gosec
		})
	}
	return asset.NewRegistry(extra...)
}

// KeyTemplate is the part of a key shared by every token of one invocation.
type KeyTemplate struct {
	Wallet     string
	Contract   string
	ChainID    uint64
	Collection string
}

// NewKeyTemplate resolves --collection, then lets --contract and --chain
// override what it supplied.
func NewKeyTemplate(cmd *cli.Command, reg *asset.Registry) (KeyTemplate, error) {
	kt := KeyTemplate{Wallet: cmd.String("wallet")}

	if id := cmd.String("collection"); id != "" {
		col, err := reg.Lookup(id)
		if err != nil && cmd.String("contract") == "" {
			return KeyTemplate{}, err
		}
		kt.Collection = col.Name
		kt.Contract, kt.ChainID = col.Contract, col.ChainID
	}
	if c := cmd.String("contract"); c != "" {
		kt.Contract = c
	}
	if n := cmd.Uint64("chain"); n != 0 {
		kt.ChainID = n
	}

	if kt.Wallet == "" {
		return KeyTemplate{}, fmt.Errorf("--wallet is required: %w", asset.ErrInvalidKey)
	}
	if kt.Contract == "" {
		return KeyTemplate{}, fmt.Errorf("--contract or --collection is required: %w", asset.ErrInvalidKey)
	}
	return kt, nil
}

// Key builds an unvalidated key for token. Validation happens in the cache
// so a bad entry in a batch only fails itself.
func (kt KeyTemplate) Key(variant, token string) asset.Key {
	return asset.Key{
		Variant:  asset.Variant(variant),
		TokenID:  token,
		Wallet:   kt.Wallet,
		Contract: kt.Contract,
		ChainID:  kt.ChainID,
	}
}

// NewBackend builds the authorization service client from flags and config.
func NewBackend(cmd *cli.Command) (*remote.BackendRemote, error) {
	path, _ := config.GetString("api.path", remote.DefaultPath)
	token, _ := config.GetString("api.token", "")
	maxBytes, _ := config.GetInt("api.max_bytes", int(remote.DefaultMaxBytes))
	retries, _ := config.GetInt("api.retries", 2)
	perSecond, _ := config.GetFloat("api.rate", 0)
	burst, _ := config.GetInt("api.burst", 1)

	be, err := remote.NewBackendRemote(cmd.String("base-url"),
		remote.WithPath(path),
		remote.WithToken(remote.ResolveToken(token)),
		remote.WithUserAgent("assetctl/"+version.Version),
		remote.WithMaxBytes(int64(maxBytes)),
		remote.WithRetries(retries, 250*time.Millisecond, 2*time.Second),
		remote.WithRateLimit(perSecond, burst),
	)
	if err != nil {
		return nil, err
	}
	log.Debugf("be: %v", be)
	return be, nil
}

// NewCache builds a cache over the service client.
func NewCache(cmd *cli.Command) (*cache.Cache, error) {
	be, err := NewBackend(cmd)
	if err != nil {
		return nil, err
	}

	capacity, _ := config.GetInt("cache.capacity", cache.DefaultCapacity)
	denialTTL, _ := config.GetDuration("cache.denial_ttl", 0)
	concurrency, _ := config.GetInt("cache.preload_concurrency", defaultPreloadConcurrency)

	return cache.New(be, cache.Config{
		Capacity:           capacity,
		FetchTimeout:       cmd.Duration("timeout"),
		DenialTTL:          denialTTL,
		PreloadConcurrency: concurrency,
	})
}

// CommandBuilder constructs a cli.Command for an asset subcommand using a
// consistent pattern: metadata, the tldr flag, key and backend flags, and
// any command specific flags.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Output    bool
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (b *CommandBuilder) Build() *cli.Command {
	flags := append([]cli.Flag{tldrFlag}, b.Flags...)
	flags = append(flags, NewKeyFlags(b.Name)...)
	flags = append(flags, NewBackendFlags(b.Name)...)
	if b.Output {
		flags = append(flags, NewOutputFlags(b.Name)...)
	}

	return &cli.Command{
		Name:      b.Name,
		Usage:     b.Usage,
		UsageText: b.UsageText,
		Metadata: map[string]any{
			"meta": b.Meta,
		},
		Flags:  flags,
		Action: b.Action,
	}
}
