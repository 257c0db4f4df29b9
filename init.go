package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	sentinelStart = "<!-- project-index:start -->"
	sentinelEnd   = "<!-- project-index:end -->"
)

// runInit implements the `project-index init` subcommand, which writes (or
// updates) a usage section in a CLAUDE.md file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("project-index init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: project-index init [flags] [path-to-CLAUDE.md]

Write a project-index usage section to a CLAUDE.md file. The section is
wrapped in sentinel comments so it can be updated in place on subsequent runs
without touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && fs.NArg() == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "CLAUDE.md"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote project-index section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped documentation block.
func generateSection() string {
	body := `## project-index — Structural Project Map

Run ` + "`project-index`" + ` via the Bash tool at the start of any task on an
unfamiliar codebase. It writes ` + "`PROJECT_INDEX.dsl`" + `, a compact line-oriented
map of directories, files, functions, classes, call relationships, and
dependencies.

**Availability:** Check with ` + "`project-index --version`" + ` first; skip gracefully
if not found.

**Run it:**
` + "```" + `bash
project-index                          # index the current directory
project-index /path/to/repo            # explicit path
project-index -l python,typescript     # filter by language
project-index -n 2000                  # cap the number of indexed files
project-index -check                   # exit non-zero if the index is stale
project-index -stdout                  # print the index instead of writing it
` + "```" + `

**Freshness:** Run ` + "`project-index -check`" + ` before trusting an existing
index; rebuild when it reports staleness. Add ` + "`PROJECT_INDEX.dsl`" + ` and
` + "`PROJECT_INDEX.dsl.sum`" + ` to ` + "`.gitignore`" + `.

**How to use the output — follow these rules:**

1. **Use ` + "`FN`/`M`" + ` lines instead of Grep to find definitions.** Every
   extracted function and method is listed as ` + "`FN path::name signature`" + ` or
   ` + "`M path::Class.name signature`" + `.

2. **Use ` + "`C=`/`B=`" + ` suffixes to trace call relationships.** ` + "`C=`" + ` lists
   what a function calls; ` + "`B=`" + ` lists what calls it. The index is name-based,
   so treat it as a hint, not a resolved call graph.

3. **Use ` + "`D`" + ` and ` + "`T`" + ` lines to decide where new code belongs.** They
   describe each directory's purpose and the overall layout.

4. **Only fall back to Glob/Grep for things the index cannot answer** — e.g.
   usages inside function bodies, or files listed with ` + "`parsed=0`" + `.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
