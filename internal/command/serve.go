// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/config"
	"github.com/staranto/assetctl/internal/meta"
	"github.com/staranto/assetctl/internal/server"
)

// ServeCommandAction runs the local HTTP surface until interrupted. The cache
// is cleared on the way out.
func ServeCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "serve") {
		return nil
	}

	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	reg := m.Registry
	if reg == nil {
		reg = asset.NewRegistry()
	}

	opts := server.Options{Registry: reg}
	if id := cmd.String("collection"); id != "" {
		if col, err := reg.Lookup(id); err == nil {
			opts.Contract, opts.ChainID = col.Contract, col.ChainID
		}
	}
	if c := cmd.String("contract"); c != "" {
		opts.Contract = c
	}
	if n := cmd.Uint64("chain"); n != 0 {
		opts.ChainID = n
	}
	opts.RetryAfter, _ = config.GetDuration("serve.retry_after", server.DefaultRetryAfter)

	c, err := NewCache(cmd)
	if err != nil {
		return err
	}
	defer c.Clear()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	grace, _ := config.GetDuration("serve.grace", 5*time.Second)
	return server.New(c, opts).ListenAndServe(ctx, cmd.String("listen"), grace)
}

// ServeCommandBuilder constructs the cli.Command definition for "serve".
// serve takes its wallet from each request, so the key flags only provide
// contract defaults.
func ServeCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "serve",
		Usage:     "serve assets over a local HTTP API",
		UsageText: `assetctl serve [options]`,
		Flags: []cli.Flag{
			NameSpacedValueChainFlagFromConfigFile("serve", cfg.Source, &cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "address to listen on",
				Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETCTL_LISTEN")),
				Value:   server.DefaultListen,
			}),
		},
		Action: ServeCommandAction,
		Meta:   meta,
	}).Build()
}
