// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

// docgen reads docs/commands/<cmd>.md and writes
//   - docs/man/share/man1/assetctl-<cmd>.1 via md2man
//   - docs/tldr/assetctl-<cmd>.md from the Synopsis and Examples sections

const projectURL = "https://github.com/staranto/assetctl"

func main() {
	var (
		root          string
		onlyIfChanged bool
	)
	flag.StringVar(&root, "root", ".", "repo root")
	flag.BoolVar(&onlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	n, err := generate(root, onlyIfChanged)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("generated docs for %d command(s)\n", n)
}

func generate(root string, onlyIfChanged bool) (int, error) {
	commandsDir := filepath.Join(root, "docs", "commands")
	manDir := filepath.Join(root, "docs", "man", "share", "man1")
	tldrDir := filepath.Join(root, "docs", "tldr")

	for _, d := range []string{manDir, tldrDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return 0, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	entries, err := os.ReadDir(commandsDir)
	if err != nil {
		return 0, fmt.Errorf("reading commands dir %s: %w", commandsDir, err)
	}

	var processed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cmd := strings.TrimSuffix(e.Name(), ".md")

		raw, err := os.ReadFile(filepath.Join(commandsDir, e.Name()))
		if err != nil {
			return processed, err
		}

		manPath := filepath.Join(manDir, "assetctl-"+cmd+".1")
		if err := writeFileIfChanged(manPath, md2man.Render(raw), onlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing man page for %s: %w", cmd, err)
		}

		tldrPath := filepath.Join(tldrDir, "assetctl-"+cmd+".md")
		if err := writeFileIfChanged(tldrPath, []byte(parsePage(string(raw)).tldr(cmd)), onlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing tldr page for %s: %w", cmd, err)
		}

		processed++
	}

	if processed == 0 {
		return 0, fmt.Errorf("no command markdown found under %s", commandsDir)
	}
	return processed, nil
}

func writeFileIfChanged(path string, content []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		switch {
		case err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(content)):
			return nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}
	return os.WriteFile(path, content, 0o644) //nolint:gosec
}

var (
	h1Re          = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	h2Re          = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	placeholderRe = regexp.MustCompile(`<([A-Za-z_][A-Za-z0-9_.-]*)>`)
)

type example struct {
	Desc string
	Cmd  string
}

type page struct {
	Title    string
	Synopsis string
	Examples []example
}

// parsePage reads the H1 title, the first paragraph of "## Synopsis" and
// the first fenced block of "## Examples" where "# text" lines describe the
// command that follows.
func parsePage(md string) page {
	var p page
	if m := h1Re.FindStringSubmatch(md); m != nil {
		p.Title = strings.TrimSpace(m[1])
	}

	sections := splitSections(md)
	p.Synopsis = firstParagraph(sections["synopsis"])
	p.Examples = parseExamples(sections["examples"])
	return p
}

func splitSections(md string) map[string]string {
	out := make(map[string]string)
	locs := h2Re.FindAllStringSubmatchIndex(md, -1)
	for i, loc := range locs {
		name := strings.ToLower(strings.TrimSpace(md[loc[2]:loc[3]]))
		end := len(md)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out[name] = md[loc[1]:end]
	}
	return out
}

func firstParagraph(s string) string {
	var parts []string
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		parts = append(parts, ln)
	}
	return strings.Join(parts, " ")
}

func parseExamples(s string) []example {
	const fence = "```"
	start := strings.Index(s, fence)
	if start < 0 {
		return nil
	}
	s = s[start+len(fence):]
	// Drop the info string.
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	if end := strings.Index(s, fence); end >= 0 {
		s = s[:end]
	}

	var exs []example
	desc := ""
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		switch {
		case ln == "":
		case strings.HasPrefix(ln, "#"):
			desc = strings.TrimSpace(strings.TrimLeft(ln, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(ln), " ")})
			desc = ""
		}
	}
	return exs
}

func (p page) tldr(cmd string) string {
	var b strings.Builder
	b.WriteString("# assetctl " + cmd + "\n\n")

	short := p.Synopsis
	if short == "" {
		short = p.Title
	}
	if short == "" {
		short = "assetctl " + cmd
	}
	b.WriteString("> " + short + "\n")
	b.WriteString("> More information: <" + projectURL + ">.\n")

	exs := p.Examples
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: "assetctl " + cmd + " --help"}}
	}
	for _, ex := range exs {
		b.WriteString("\n- " + ex.Desc + ":\n\n")
		b.WriteString("`" + placeholderRe.ReplaceAllString(ex.Cmd, "{{$1}}") + "`\n")
	}
	return b.String()
}
