// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/cache"
	"github.com/staranto/assetctl/internal/meta"
	"github.com/staranto/assetctl/internal/output"
)

var ErrIncomplete = errors.New("not every asset is ready")

var preloadColumns = []output.Column{
	{Key: "variant"},
	{Key: "token"},
	{Key: "status"},
	{Key: "size"},
	{Key: "id"},
	{Key: "error"},
}

// PreloadCommandAction warms a batch of assets and reports how each settled.
func PreloadCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "preload") {
		return nil
	}

	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	tokens := cmd.Args().Slice()
	if len(tokens) == 0 {
		return errors.New("at least one TOKEN_ID is required")
	}

	reg := m.Registry
	if reg == nil {
		reg = asset.NewRegistry()
	}
	kt, err := NewKeyTemplate(cmd, reg)
	if err != nil {
		return err
	}

	variants := cmd.StringSlice("variant")
	if len(variants) == 0 {
		variants = []string{string(asset.VariantTransparent)}
	}

	keys := make([]asset.Key, 0, len(tokens)*len(variants))
	for _, token := range tokens {
		for _, v := range variants {
			keys = append(keys, kt.Key(v, token))
		}
	}

	c, err := NewCache(cmd)
	if err != nil {
		return err
	}
	defer c.Clear()

	results := c.Preload(ctx, keys)
	log.Debugf("stats: %+v", c.Stats())

	if err := output.SliceDiceSpit(PreloadRows(results), preloadColumns, output.OptionsFromCommand(cmd), cmd.Root().Writer); err != nil {
		return err
	}

	if cmd.Bool("strict") {
		for _, r := range results {
			if !r.Ready() {
				return ErrIncomplete
			}
		}
	}
	return nil
}

// PreloadRows flattens results for output.
func PreloadRows(results []cache.Result) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		row := map[string]interface{}{
			"variant": string(r.Key.Variant),
			"token":   r.Key.TokenID,
			"wallet":  r.Key.Wallet,
			"status":  r.Status.String(),
		}
		if r.Ready() {
			row["size"] = humanize.IBytes(uint64(r.Handle.Size())) //nolint:gosec
			row["bytes"] = r.Handle.Size()
			row["id"] = r.Handle.ID()
			row["contentType"] = r.Handle.ContentType()
		}
		if r.Err != nil {
			row["error"] = r.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

// PreloadCommandBuilder constructs the cli.Command definition for "preload".
func PreloadCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "preload",
		Usage:     "preload a batch of ownership-gated assets",
		UsageText: `assetctl preload [options] TOKEN_ID...`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "variant",
				Aliases: []string{"V"},
				Usage:   fmt.Sprintf("asset variant, repeatable: %s", asset.VariantNames()),
				Validator: func(values []string) error {
					for _, v := range values {
						if err := FlagValidators(v, VariantValidator); err != nil {
							return err
						}
					}
					return nil
				},
			},
			&cli.BoolFlag{
				Name:        "strict",
				Usage:       "fail unless every asset is ready",
				HideDefault: true,
			},
		},
		Output: true,
		Action: PreloadCommandAction,
		Meta:   meta,
	}).Build()
}
