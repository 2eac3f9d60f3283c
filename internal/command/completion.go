// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/assetctl/internal/meta"
)

const bashCompletionScript = `# bash completion for assetctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_assetctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "fetch preload serve completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local key="--wallet -w --contract --chain --collection --base-url --timeout --tldr"
    local out="--color -c --filter -f --output -o --sort -s --titles -t"

    case "$prev" in
    --variant|-V)
        COMPREPLY=( $(compgen -W "toxic-transparent pre-toxic-transparent pixel-art glb fbx" -- "$cur") )
        return 0
        ;;
    --output|-o)
        COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
        return 0
        ;;
    --collection)
        COMPREPLY=( $(compgen -W "toxic-skulls-club skulls-on-ape skulls-of-mayhem" -- "$cur") )
        return 0
        ;;
    --out)
        COMPREPLY=( $(compgen -f -- "$cur") )
        return 0
        ;;
    esac

    case "$cmd" in
    fetch)
        local opts="$key --variant -V --out --name --force"
        ;;
    preload)
        local opts="$key $out --variant -V --strict"
        ;;
    serve)
        local opts="$key --listen -l"
        ;;
    completion)
        COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
        return 0
        ;;
    *)
        local opts="$key"
        ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _assetctl assetctl
`

const zshCompletionScript = `#compdef assetctl

_assetctl() {
  local -a cmds
  cmds=(
    'fetch:fetch one ownership-gated asset'
    'preload:preload a batch of ownership-gated assets'
    'serve:serve assets over a local HTTP API'
    'completion:generate shell completion script'
  )

  local -a variants
  variants=(toxic-transparent pre-toxic-transparent pixel-art glb fbx)

  local -a key
  key=(
  '(-w --wallet)'{-w,--wallet}'[wallet address]:wallet'
  '--contract[contract address]:contract'
  '--chain[chain id]:chain'
  '--collection[known collection]:collection:(toxic-skulls-club skulls-on-ape skulls-of-mayhem)'
  '--base-url[authorization service]:url'
  '--timeout[fetch deadline]:duration'
  '--tldr[show tldr page]'
  )

  local -a out
  out=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '(-s --sort)'{-s,--sort}'[sort columns]:columns'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'assetctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    fetch)
      _arguments -C \
        $key \
        '(-V --variant)'{-V,--variant}'[asset variant]:variant:($variants)' \
        '--out[destination]:out:_files' \
        '--name[file name]:name' \
        '--force[write to a terminal]' \
        '1:token id'
      ;;
    preload)
      _arguments -C \
        $key \
        $out \
        '*'{-V,--variant}'[asset variant]:variant:($variants)' \
        '--strict[fail unless all ready]' \
        '*:token id'
      ;;
    serve)
      _arguments -C \
        $key \
        '(-l --listen)'{-l,--listen}'[listen address]:address'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _assetctl assetctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return fmt.Errorf("usage: assetctl completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "assetctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
