// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// docgen renders docs/commands/<cmd>.md into kvcache-<cmd>.1 man pages and
// tldr pages, and checks that every kvcache subcommand has a page.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"

	"github.com/staranto/kvcachego/internal/command"
)

const (
	binary  = "kvcache"
	repoURL = "https://github.com/staranto/kvcachego"
)

// requiredSections must appear, as H2 headings, in every command page.
var requiredSections = []string{
	"short description",
	"synopsis",
	"description",
	"quick examples",
}

func main() {
	var (
		root  string
		force bool
		check bool
	)

	flag.StringVar(&root, "root", ".", "repo root")
	flag.BoolVar(&force, "force", false, "rewrite outputs even when unchanged")
	flag.BoolVar(&check, "check", false, "only verify pages against the kvcache command tree")
	flag.Parse()

	if check {
		if err := checkCoverage(root); err != nil {
			fatalf("%v", err)
		}
		return
	}

	n, err := generate(root, !force)
	if err != nil {
		fatalf("%v", err)
	}
	if n == 0 {
		fatalf("no command pages under %s", commandsDir(root))
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, "docgen: "+f+"\n", a...)
	os.Exit(1)
}

func commandsDir(root string) string { return filepath.Join(root, "docs", "commands") }

// page is a parsed command markdown file.
type page struct {
	name     string
	title    string
	sections map[string]string
}

// parsePage splits md on its H1 and H2 headings. Section keys are lower
// case.
func parsePage(name, md string) page {
	p := page{name: name, sections: map[string]string{}}

	var cur string
	var body strings.Builder
	flush := func() {
		if cur != "" {
			p.sections[cur] = strings.TrimSpace(body.String())
		}
		body.Reset()
	}

	inFence := false
	for _, ln := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(ln, "```") {
			inFence = !inFence
		}
		switch {
		case !inFence && strings.HasPrefix(ln, "## "):
			flush()
			cur = strings.ToLower(strings.TrimSpace(ln[3:]))
			continue
		case !inFence && strings.HasPrefix(ln, "# ") && p.title == "":
			p.title = strings.TrimSpace(ln[2:])
			continue
		}
		body.WriteString(ln)
		body.WriteByte('\n')
	}
	flush()

	return p
}

// validate reports the required sections the page lacks.
func (p page) validate() error {
	var missing []string
	for _, s := range requiredSections {
		if strings.TrimSpace(p.sections[s]) == "" {
			missing = append(missing, s)
		}
	}
	if p.title == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s.md: missing %s", p.name, strings.Join(missing, ", "))
	}
	return nil
}

// short is the first paragraph of the short description, joined onto one
// line. Without one it falls back to the title.
func (p page) short() string {
	para, _, _ := strings.Cut(p.sections["short description"], "\n\n")
	if s := strings.Join(strings.Fields(para), " "); s != "" {
		return s
	}
	if p.title != "" {
		return p.title + "."
	}
	return binary + " " + p.name
}

type example struct {
	Desc string
	Cmd  string
}

// examples reads the first fenced block of the quick examples section. A
// "# ..." line describes the command line that follows it.
func (p page) examples() []example {
	_, block, ok := strings.Cut(p.sections["quick examples"], "```")
	if !ok {
		return nil
	}
	block, _, ok = strings.Cut(block, "```")
	if !ok {
		return nil
	}

	var exs []example
	desc := ""
	// The remainder of the opening fence line is a language tag.
	for _, ln := range strings.Split(block, "\n")[1:] {
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

// tldr renders the page in tldr-pages format.
func (p page) tldr() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s-%s\n\n", binary, p.name)
	fmt.Fprintf(&b, "> %s\n", p.short())
	fmt.Fprintf(&b, "> More information: %s.\n", repoURL)

	exs := p.examples()
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: binary + " " + p.name + " --help"}}
	}
	for _, ex := range exs {
		fmt.Fprintf(&b, "\n- %s:\n\n`%s`\n", ex.Desc, ex.Cmd)
	}
	return b.String()
}

// loadPages parses every docs/commands/*.md under root, in name order.
func loadPages(root string) ([]page, [][]byte, error) {
	dir := commandsDir(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var pages []page
	var raws [][]byte
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".md")
		if e.IsDir() || !ok {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, nil, err
		}
		pages = append(pages, parsePage(name, string(raw)))
		raws = append(raws, raw)
	}
	return pages, raws, nil
}

// generate writes the man and tldr output for every valid page and returns
// how many it rendered. Invalid pages are reported together.
func generate(root string, onlyIfChanged bool) (int, error) {
	pages, raws, err := loadPages(root)
	if err != nil {
		return 0, err
	}

	manDir := filepath.Join(root, "docs", "man", "share", "man1")
	tldrDir := filepath.Join(root, "docs", "tldr")
	for _, dir := range []string{manDir, tldrDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}

	var errs []error
	n := 0
	for i, p := range pages {
		if err := p.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		base := binary + "-" + p.name
		if err := writeFile(filepath.Join(manDir, base+".1"), md2man.Render(raws[i]), onlyIfChanged); err != nil {
			return n, err
		}
		if err := writeFile(filepath.Join(tldrDir, base+".md"), []byte(p.tldr()), onlyIfChanged); err != nil {
			return n, err
		}
		n++
	}
	return n, errors.Join(errs...)
}

// writeFile skips the write when onlyIfChanged is set and path already holds
// data, ignoring surrounding whitespace.
func writeFile(path string, data []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		switch {
		case err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(data)):
			return nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// subcommands lists the kvcache subcommand names.
func subcommands() ([]string, error) {
	app, err := command.InitApp(context.Background(), []string{binary})
	if err != nil {
		return nil, err
	}
	var names []string
	for _, c := range app.Commands {
		if !c.Hidden {
			names = append(names, c.Name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// checkCoverage fails when a subcommand has no page, a page names no
// subcommand or a page is missing a required section.
func checkCoverage(root string) error {
	pages, _, err := loadPages(root)
	if err != nil {
		return err
	}
	names, err := subcommands()
	if err != nil {
		return err
	}

	var errs []error
	documented := map[string]bool{}
	for _, p := range pages {
		documented[p.name] = true
		if !slices.Contains(names, p.name) {
			errs = append(errs, fmt.Errorf("%s.md: no such command", p.name))
		}
		if err := p.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, n := range names {
		if !documented[n] {
			errs = append(errs, fmt.Errorf("%s: no page in %s", n, commandsDir(root)))
		}
	}
	return errors.Join(errs...)
}
