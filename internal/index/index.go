// Package index orchestrates one full build: discovery, extraction, purpose
// inference, and the graph pass.
package index

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/roderik/claude-code-project-index/internal/config"
	"github.com/roderik/claude-code-project-index/internal/describe"
	"github.com/roderik/claude-code-project-index/internal/discover"
	"github.com/roderik/claude-code-project-index/internal/engine"
	"github.com/roderik/claude-code-project-index/internal/graph"
	"github.com/roderik/claude-code-project-index/internal/model"
)

// Builder runs index builds for one root with one configuration.
type Builder struct {
	Root   string
	Config *config.Config
	Stderr io.Writer

	selector *engine.Selector
}

// New returns a builder. stderr receives per-file warnings.
func New(root string, cfg *config.Config, stderr io.Writer) *Builder {
	return &Builder{
		Root:     root,
		Config:   cfg,
		Stderr:   stderr,
		selector: engine.New(cfg.EngineTimeout()),
	}
}

// Build produces a complete index. Individual files that cannot be read or
// parsed are downgraded to listed-only entries; only failed discovery is
// fatal.
func (b *Builder) Build() (*model.Index, error) {
	entries, truncated, err := discover.Files(b.Root, discover.Options{
		Languages:   b.Config.Languages,
		MaxFiles:    b.Config.MaxFiles,
		IgnoreGlobs: b.Config.Ignore,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if truncated {
		fmt.Fprintf(b.Stderr, "Warning: file limit reached (%d), indexing truncated\n", b.Config.MaxFiles)
	}

	entries = b.filterBySize(entries)

	idx := model.NewIndex(b.Root)
	idx.Tree = describe.Tree(b.Root)
	idx.Stats.TotalDirs = len(discover.Dirs(entries))

	b.extractAll(idx, entries)
	b.inferDirPurposes(idx, entries)

	idx.CallGraph = graph.BuildCallGraph(idx.Files)
	idx.Deps = graph.BuildDependencyGraph(idx.Files)

	return idx, nil
}

func (b *Builder) filterBySize(entries []discover.Entry) []discover.Entry {
	kept := entries[:0]
	for _, e := range entries {
		fi, err := os.Stat(filepath.Join(b.Root, e.Path))
		if err == nil && fi.Size() > b.Config.MaxFileSize {
			fmt.Fprintf(b.Stderr, "Warning: %s: skipped (>%d bytes)\n", e.Path, b.Config.MaxFileSize)
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// extractAll runs extraction over the entries with a worker pool. Bundles are
// independent per file during this pass; all index mutation happens on the
// collecting goroutine.
func (b *Builder) extractAll(idx *model.Index, entries []discover.Entry) {
	type result struct {
		entry  discover.Entry
		bundle *model.SignatureBundle
		doc    *model.DocStructure
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(entries) {
		numWorkers = len(entries)
	}
	if numWorkers == 0 {
		return
	}

	work := make(chan discover.Entry, len(entries))
	results := make(chan result, len(entries))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range work {
				content, err := os.ReadFile(filepath.Join(b.Root, e.Path))
				if err != nil {
					results <- result{entry: e}
					continue
				}
				if e.Markdown {
					results <- result{entry: e, doc: describe.ScanMarkdown(string(content))}
					continue
				}
				results <- result{entry: e, bundle: b.selector.Extract(filepath.Join(b.Root, e.Path), content)}
			}
		}()
	}

	for _, e := range entries {
		work <- e
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.entry.Markdown {
			if r.doc != nil && (len(r.doc.Sections) > 0 || len(r.doc.Hints) > 0) {
				idx.Docs[r.entry.Path] = r.doc
				idx.Stats.MarkdownFiles++
			}
			continue
		}

		entry := &model.FileEntry{
			Language: r.entry.Language,
			Purpose:  describe.FilePurpose(r.entry.Path),
		}
		if r.bundle.Parsed() {
			entry.Parsed = true
			entry.Bundle = r.bundle
			idx.Stats.FullyParsed[r.entry.Language]++
		} else {
			if r.bundle != nil && len(r.bundle.Imports) > 0 {
				entry.Bundle = r.bundle
			}
			idx.Stats.ListedOnly[r.entry.Language]++
		}
		idx.Files[r.entry.Path] = entry
		idx.Stats.TotalFiles++
	}
}

func (b *Builder) inferDirPurposes(idx *model.Index, entries []discover.Entry) {
	filesWithin := make(map[string][]string)
	for _, e := range entries {
		dir := filepath.ToSlash(filepath.Dir(e.Path))
		filesWithin[dir] = append(filesWithin[dir], filepath.Base(e.Path))
	}
	for dir, files := range filesWithin {
		if dir == "." {
			continue
		}
		if purpose := describe.DirPurpose(dir, files); purpose != "" {
			idx.DirPurposes[dir] = purpose
		}
	}
}
