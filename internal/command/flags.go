// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/assetctl/internal/asset"
	"github.com/staranto/assetctl/internal/cache"
	"github.com/staranto/assetctl/internal/config"
)

func init() {
	cfg, _ = config.Load()
}

var (
	cfg config.Type

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

// configSources returns the namespaced and global yaml sources for key.
func configSources(ns string, key string) []cli.ValueSource {
	return []cli.ValueSource{
		yaml.YAML(ns+"."+key, altsrc.StringSourcer(cfg.Source)),
		yaml.YAML(key, altsrc.StringSourcer(cfg.Source)),
	}
}

// NewOutputFlags are the rendering flags of commands that print tables.
func NewOutputFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(configSources(ns, "color")...),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(configSources(ns, "output")...),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of columns to sort the results by",
			Sources: cli.NewValueSourceChain(configSources(ns, "sort")[0]),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(configSources(ns, "titles")...),
			Value:   false,
		},
	}
}

// NewKeyFlags are the flags that identify whose asset is requested and from
// which contract.
func NewKeyFlags(ns string) []cli.Flag {
	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, &cli.StringFlag{
			Name:    "wallet",
			Aliases: []string{"w"},
			Usage:   "wallet address that owns the token",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETCTL_WALLET")),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, AddressValidator)
			},
		}),
		NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, &cli.StringFlag{
			Name:    "contract",
			Usage:   "NFT contract address. Overrides --collection",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETCTL_CONTRACT")),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, AddressValidator)
			},
		}),
		&cli.Uint64Flag{
			Name:    "chain",
			Usage:   "chain id of the contract. Overrides --collection",
			Sources: cli.NewValueSourceChain(append([]cli.ValueSource{cli.EnvVar("ASSETCTL_CHAIN")}, configSources(ns, "chain")...)...),
		},
		NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, &cli.StringFlag{
			Name:    "collection",
			Usage:   "known collection supplying contract and chain",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ASSETCTL_COLLECTION")),
			Value:   "toxic-skulls-club",
		}),
	}
}

// NewBackendFlags are the flags that shape the authorization service client.
func NewBackendFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "base URL of the asset authorization service",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ASSETCTL_BASE_URL"),
				yaml.YAML(ns+".base_url", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("api.base_url", altsrc.StringSourcer(cfg.Source)),
			),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "deadline for each asset fetch",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ASSETCTL_TIMEOUT"),
				yaml.YAML("api.timeout", altsrc.StringSourcer(cfg.Source)),
			),
			Value: cache.DefaultFetchTimeout,
			Validator: func(value time.Duration) error {
				return FlagValidators(value, PositiveDurationValidator)
			},
		},
	}
}

// NewVariantFlag builds the single-valued --variant flag.
func NewVariantFlag(ns string) *cli.StringFlag {
	return NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, &cli.StringFlag{
		Name:    "variant",
		Aliases: []string{"V"},
		Usage:   "asset variant: " + asset.VariantNames(),
		Sources: cli.NewValueSourceChain(),
		Value:   string(asset.VariantTransparent),
		Validator: func(value string) error {
			return FlagValidators(value, VariantValidator)
		},
	})
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas reports whether target is on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
