// project-index builds PROJECT_INDEX.dsl, a compact structural map of a
// source tree for architectural awareness.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/config"
	"github.com/roderik/claude-code-project-index/internal/dsl"
	"github.com/roderik/claude-code-project-index/internal/index"
	"github.com/roderik/claude-code-project-index/internal/model"
	"github.com/roderik/claude-code-project-index/internal/stale"
	"github.com/roderik/claude-code-project-index/internal/watch"
)

var version = "dev"

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "init" {
		if err := runInit(args[1:], os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := run(args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("project-index", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		output      string
		maxFiles    int
		langs       string
		maxFileSize int64
		timeoutMs   int
		watchMode   bool
		checkMode   bool
		toStdout    bool
		showVersion bool
	)

	fs.StringVar(&output, "o", "", "output file (default PROJECT_INDEX.dsl in the root)")
	fs.IntVar(&maxFiles, "n", 0, "maximum number of files to index")
	fs.IntVar(&maxFiles, "max-files", 0, "maximum number of files to index")
	fs.StringVar(&langs, "l", "", "comma-separated languages to include")
	fs.StringVar(&langs, "langs", "", "comma-separated languages to include")
	fs.Int64Var(&maxFileSize, "max-file-size", 0, "skip files larger than this many bytes")
	fs.IntVar(&timeoutMs, "timeout", 0, "external engine timeout in milliseconds")
	fs.BoolVar(&watchMode, "watch", false, "rebuild the index when files change")
	fs.BoolVar(&checkMode, "check", false, "report whether the index is stale instead of building")
	fs.BoolVar(&toStdout, "stdout", false, "write the index to stdout instead of a file")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "project-index %s\n", version)
		return nil
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	if output != "" {
		cfg.Output = output
	}
	if maxFiles > 0 {
		cfg.MaxFiles = maxFiles
	}
	if langs != "" {
		cfg.Languages = nil
		for _, name := range strings.Split(langs, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Languages = append(cfg.Languages, name)
			}
		}
	}
	if maxFileSize > 0 {
		cfg.MaxFileSize = maxFileSize
	}
	if timeoutMs > 0 {
		cfg.EngineTimeoutMs = timeoutMs
	}

	outPath := cfg.Output
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(root, outPath)
	}

	if checkMode {
		return runCheck(root, outPath, stdout)
	}

	builder := index.New(root, cfg, stderr)
	if err := buildOnce(builder, outPath, toStdout, stdout, stderr); err != nil {
		return err
	}
	if !watchMode {
		return nil
	}

	w, err := watch.New(root, cfg.WatchDebounce(), []string{outPath, stale.ManifestPath(outPath)}, func() {
		if err := buildOnce(builder, outPath, toStdout, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Warning: rebuild failed: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintf(stderr, "Watching %s for changes...\n", root)
	return w.Run(context.Background())
}

func buildOnce(builder *index.Builder, outPath string, toStdout bool, stdout, stderr io.Writer) error {
	idx, err := builder.Build()
	if err != nil {
		return err
	}
	rendered := dsl.Render(idx)

	if toStdout {
		_, err := io.WriteString(stdout, rendered)
		return err
	}

	if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	paths := make([]string, 0, len(idx.Files))
	for p := range idx.Files {
		paths = append(paths, p)
	}
	if err := stale.WriteFingerprints(builder.Root, outPath, paths); err != nil {
		fmt.Fprintf(stderr, "Warning: writing fingerprints: %v\n", err)
	}

	printSummary(stderr, idx, outPath)
	return nil
}

func runCheck(root, outPath string, stdout io.Writer) error {
	if needed, reason := stale.NeedsReindex(root, outPath); needed {
		return fmt.Errorf("reindex needed: %s", reason)
	}
	if changed := stale.ExternalChanges(root, outPath); len(changed) > 0 {
		return fmt.Errorf("reindex needed: %d files changed externally (%s, ...)", len(changed), changed[0])
	}
	_, _ = fmt.Fprintln(stdout, "index up to date")
	return nil
}

func printSummary(w io.Writer, idx *model.Index, outPath string) {
	if idx.Stats.TotalFiles == 0 {
		fmt.Fprintln(w, "Warning: no files were indexed; check the directory and ignore patterns")
		return
	}

	fmt.Fprintf(w, "Indexed %d files across %d directories (%d documentation files)\n",
		idx.Stats.TotalFiles, idx.Stats.TotalDirs, idx.Stats.MarkdownFiles)

	if len(idx.Stats.FullyParsed) > 0 {
		fmt.Fprintf(w, "Parsed: %s\n", formatLangCounts(idx.Stats.FullyParsed))
	}
	if len(idx.Stats.ListedOnly) > 0 {
		fmt.Fprintf(w, "Listed only: %s\n", formatLangCounts(idx.Stats.ListedOnly))
	}
	fmt.Fprintf(w, "Saved to %s\n", outPath)
}

func formatLangCounts(counts map[string]int) string {
	langs := make([]string, 0, len(counts))
	for l := range counts {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	parts := make([]string, 0, len(langs))
	for _, l := range langs {
		parts = append(parts, fmt.Sprintf("%d %s", counts[l], l))
	}
	return strings.Join(parts, ", ")
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-o": true, "--o": true,
	"-n": true, "--n": true,
	"-max-files": true, "--max-files": true,
	"-l": true, "--l": true,
	"-langs": true, "--langs": true,
	"-max-file-size": true, "--max-file-size": true,
	"-timeout": true, "--timeout": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
