// Package describe renders the project's directory tree and infers what
// directories, files, and documentation are for.
package describe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/discover"
)

const maxTreeDepth = 5

// importantFiles are manifests shown in the tree alongside directories.
var importantFiles = map[string]struct{}{
	"README.md":        {},
	"CLAUDE.md":        {},
	"package.json":     {},
	"requirements.txt": {},
	"Cargo.toml":       {},
	"go.mod":           {},
	"pom.xml":          {},
	"build.gradle":     {},
	"setup.py":         {},
	"pyproject.toml":   {},
	"Makefile":         {},
	"turbo.json":       {},
	"tsconfig.json":    {},
	"babel.config.js":  {},
	"vite.config.js":   {},
}

// Tree renders a compact ASCII tree of root: directories first with recursive
// code-file counts, then important manifest files, five levels deep with a
// trailing "..." marker where deeper directories exist.
func Tree(root string) []string {
	lines := []string{"."}
	addTreeLevel(root, "", 0, &lines)
	return lines
}

func addTreeLevel(dir, prefix string, depth int, lines *[]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if depth > maxTreeDepth {
		for _, e := range entries {
			if e.IsDir() && !discover.Skipped(e.Name()) {
				*lines = append(*lines, prefix+"└── ...")
				return
			}
		}
		return
	}

	var dirs, files []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			if !discover.Skipped(e.Name()) {
				dirs = append(dirs, e)
			}
		} else if _, ok := importantFiles[e.Name()]; ok {
			files = append(files, e)
		}
	}
	byName := func(list []os.DirEntry) {
		sort.Slice(list, func(i, j int) bool {
			return strings.ToLower(list[i].Name()) < strings.ToLower(list[j].Name())
		})
	}
	byName(dirs)
	byName(files)

	all := append(dirs, files...)
	for i, e := range all {
		last := i == len(all)-1
		connector := "├── "
		if last {
			connector = "└── "
		}

		name := e.Name()
		if e.IsDir() {
			name += "/"
			if n := countCodeFiles(filepath.Join(dir, e.Name())); n > 0 {
				name += fmt.Sprintf(" (%d files)", n)
			}
		}
		*lines = append(*lines, prefix+connector+name)

		if e.IsDir() {
			next := prefix + "│   "
			if last {
				next = prefix + "    "
			}
			addTreeLevel(filepath.Join(dir, e.Name()), next, depth+1, lines)
		}
	}
}

func countCodeFiles(dir string) int {
	count := 0
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && discover.Skipped(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if discover.Code(filepath.Ext(d.Name())) {
			count++
		}
		return nil
	})
	return count
}
