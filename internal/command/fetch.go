// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/aws"
	"github.com/staranto/assetctl/internal/backend"
	"github.com/staranto/assetctl/internal/cache"
	"github.com/staranto/assetctl/internal/config"
	"github.com/staranto/assetctl/internal/export"
	"github.com/staranto/assetctl/internal/meta"
)

var ErrTerminalOutput = errors.New("refusing to write binary asset to a terminal; use --out or --force")

// isTerminal is swapped in tests.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// FetchCommandAction resolves one asset and writes it to --out.
func FetchCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "fetch") {
		return nil
	}

	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one TOKEN_ID, got %d", cmd.Args().Len())
	}

	reg := m.Registry
	if reg == nil {
		reg = asset.NewRegistry()
	}
	kt, err := NewKeyTemplate(cmd, reg)
	if err != nil {
		return err
	}
	key := kt.Key(cmd.String("variant"), cmd.Args().First()).Normalize()
	if err := key.Validate(); err != nil {
		return err
	}

	target, err := export.ParseTarget(cmd.String("out"))
	if err != nil {
		return err
	}
	if target.Kind == export.KindStdout && isTerminal() && !cmd.Bool("force") {
		return ErrTerminalOutput
	}

	c, err := NewCache(cmd)
	if err != nil {
		return err
	}
	defer c.Clear()

	res, err := c.Request(ctx, key)
	if err != nil {
		return err
	}
	if err := resultError(res); err != nil {
		return err
	}

	sink, err := newSink(ctx, target)
	if err != nil {
		return err
	}
	sink.Stdout = cmd.Root().Writer

	where, err := sink.Write(ctx, key.FileName(cmd.String("name")), res.Handle)
	if err != nil {
		return err
	}
	if target.Kind != export.KindStdout {
		fmt.Fprintln(cmd.Root().Writer, where)
	}
	return nil
}

// resultError turns a result without a handle into a command error.
func resultError(res cache.Result) error {
	switch res.Status {
	case cache.StatusReady:
		return nil
	case cache.StatusDenied:
		return fmt.Errorf("wallet %s does not own token %s: %w", res.Key.Wallet, res.Key.TokenID, backend.ErrDenied)
	default:
		return fmt.Errorf("asset %s/%s unavailable: %w", res.Key.Variant, res.Key.TokenID, res.Err)
	}
}

func newSink(ctx context.Context, target export.Target) (*export.Sink, error) {
	if target.Kind != export.KindS3 {
		return export.NewSink(target, nil)
	}

	var opts []aws.Option
	if p, _ := config.GetString("s3.profile", ""); p != "" {
		opts = append(opts, aws.WithProfile(p))
	}
	if r, _ := config.GetString("s3.region", ""); r != "" {
		opts = append(opts, aws.WithRegion(r))
	}
	if e, _ := config.GetString("s3.endpoint", ""); e != "" {
		pathStyle, _ := config.GetBool("s3.path_style", true)
		opts = append(opts, aws.WithEndpoint(e, pathStyle))
	}

	client, err := aws.NewS3(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return export.NewSink(target, client)
}

// FetchCommandBuilder constructs the cli.Command definition for "fetch".
func FetchCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "fetch",
		Usage:     "fetch one ownership-gated asset",
		UsageText: `assetctl fetch [options] TOKEN_ID`,
		Flags: []cli.Flag{
			NewVariantFlag("fetch"),
			&cli.StringFlag{
				Name:  "out",
				Usage: "where to write: - for stdout, a file, a directory or s3://bucket/key",
				Value: "-",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "file name (without extension) used for directory and prefix targets",
			},
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "write to stdout even when it is a terminal",
				HideDefault: true,
			},
		},
		Action: FetchCommandAction,
		Meta:   meta,
	}).Build()
}
