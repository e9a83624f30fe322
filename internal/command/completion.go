// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/kvcachego/internal/meta"
)

const bashCompletionScript = `# bash completion for kvcache
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_kvcache()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "store get replay page school completion --redis-addr --redis-db --redis-password --mongo-uri --mongo-db --mongo-collection --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local output="--color -c --filter -f --output -o --titles -t"

    case "$cmd" in
        store)
            local opts="--as --flush --no-flush --replay --tldr"
            ;;
        get)
            local opts="--as --tldr"
            ;;
        replay)
            local opts="$output --op --tldr"
            ;;
        page)
            local opts="--ttl --timeout --count --aws-profile --aws-region --s3-endpoint --tldr"
            ;;
        school)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "list insert" -- "$cur") )
                return 0
            fi
            local opts="$output"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts=""
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text table json yaml" -- "$cur") )
        return 0
    fi
    if [[ "$prev" == "--as" ]]; then
        COMPREPLY=( $(compgen -W "string int float bytes raw" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _kvcache kvcache
`

const zshCompletionScript = `#compdef kvcache

_kvcache() {
  local -a cmds
  cmds=(
    'store:store values under random keys'
    'get:print the value stored under a key'
    'replay:replay the call history of an operation'
    'page:fetch pages through the expiring page cache'
    'school:school documents in mongodb'
    'completion:generate shell completion script'
  )

  local -a output
  output=(
  '(-c --color)'{-c,--color}'[enable colored table output]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text table json yaml)'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'kvcache commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    store)
      _arguments -C \
        '--as[type to store as]:type:(string int float bytes)' \
        '--flush[clear the database first]' \
        '--no-flush[keep existing data]' \
        '--replay[replay history afterwards]' \
        '*:data'
      ;;
    get)
      _arguments -C \
        '--as[decode as]:type:(raw string int)' \
        ':key'
      ;;
    replay)
      _arguments -C \
        $output \
        '--op[operation name]:op'
      ;;
    page)
      _arguments -C \
        '--ttl[cache ttl]:duration' \
        '--timeout[fetch timeout]:duration' \
        '--count[print size and access count]' \
        '--aws-profile[aws profile]:profile' \
        '--aws-region[aws region]:region' \
        '--s3-endpoint[s3 endpoint]:url' \
        '*:url:_urls'
      ;;
    school)
      _arguments -C \
        '1: :((list insert))' \
        $output \
        '*:field'
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
compdef _kvcache kvcache
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := writer(cmd)

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: kvcache completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(m meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "kvcache completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": m,
		},
		Action: CompletionCommandAction,
	}
}
