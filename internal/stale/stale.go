// Package stale decides when an index needs a rebuild and which files changed
// behind its back.
package stale

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/roderik/claude-code-project-index/internal/discover"
	"github.com/roderik/claude-code-project-index/internal/dsl"
)

// MaxAge is how old an index may get before a rebuild is forced.
const MaxAge = 168 * time.Hour

// importantDocs trigger a rebuild when present on disk but absent from the
// index's documentation map.
var importantDocs = []string{"README.md", "ARCHITECTURE.md", "API.md", "CONTRIBUTING.md"}

// driftRatio is the tolerated relative change in directory count before the
// tree is considered structurally changed.
const driftRatio = 0.2

// NeedsReindex reports whether the index at indexPath must be rebuilt, with a
// human-readable reason.
func NeedsReindex(root, indexPath string) (bool, string) {
	info, err := os.Stat(indexPath)
	if err != nil {
		return true, "index missing"
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return true, "index unreadable"
	}
	summary, err := dsl.ReadSummary(string(data))
	if err != nil || summary.TreeLines == 0 {
		return true, "index malformed"
	}

	if age := time.Since(info.ModTime()); age > MaxAge {
		return true, fmt.Sprintf("index older than %dh", int(MaxAge.Hours()))
	}

	for _, doc := range importantDocs {
		if _, err := os.Stat(filepath.Join(root, doc)); err != nil {
			continue
		}
		if _, ok := summary.Docs[doc]; !ok {
			return true, doc + " not indexed"
		}
	}

	if summary.DirCount > 0 {
		entries, _, err := discover.Files(root, discover.Options{})
		if err == nil {
			current := len(discover.Dirs(entries))
			drift := float64(current-summary.DirCount) / float64(summary.DirCount)
			if drift < 0 {
				drift = -drift
			}
			if drift > driftRatio {
				return true, fmt.Sprintf("directory count drifted (%d -> %d)", summary.DirCount, current)
			}
		}
	}

	return false, ""
}

// ExternalChanges returns the sorted set of indexed or indexable files that
// were modified, created, or removed after the index was written. Files whose
// modification time moved but whose content fingerprint still matches the
// recorded one are not reported.
func ExternalChanges(root, indexPath string) []string {
	info, err := os.Stat(indexPath)
	if err != nil {
		return nil
	}
	indexTime := info.ModTime()

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil
	}
	summary, err := dsl.ReadSummary(string(data))
	if err != nil {
		return nil
	}

	prints := LoadFingerprints(indexPath)
	changedSet := make(map[string]struct{})

	for rel := range summary.Paths {
		path := filepath.Join(root, rel)
		fi, err := os.Stat(path)
		if err != nil {
			changedSet[rel] = struct{}{}
			continue
		}
		if !fi.ModTime().After(indexTime) {
			continue
		}
		if sum, ok := prints[rel]; ok {
			if current, err := fingerprintFile(path); err == nil && current == sum {
				continue // touched, not changed
			}
		}
		changedSet[rel] = struct{}{}
	}

	entries, _, err := discover.Files(root, discover.Options{})
	if err == nil {
		for _, e := range entries {
			if e.Markdown {
				continue
			}
			if _, indexed := summary.Paths[e.Path]; indexed {
				continue
			}
			if fi, err := os.Stat(filepath.Join(root, e.Path)); err == nil && fi.ModTime().After(indexTime) {
				changedSet[e.Path] = struct{}{}
			}
		}
	}

	changed := make([]string, 0, len(changedSet))
	for rel := range changedSet {
		changed = append(changed, rel)
	}
	sort.Strings(changed)
	return changed
}
