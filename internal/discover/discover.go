// Package discover finds indexable source and documentation files in a
// project tree.
package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// Entry represents a discovered file.
type Entry struct {
	Path     string // relative to root, forward slashes
	Ext      string
	Language string
	Markdown bool
}

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".env":          {},
	"build":         {},
	"dist":          {},
	".tox":          {},
	".idea":         {},
	".vscode":       {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
	"egg-info":      {},
}

// parseableLanguages maps extensions with a structural extractor to their
// language name. Everything else in codeExtensions is listed by extension.
var parseableLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".jsx":  "javascript",
	".tsx":  "typescript",
	".sh":   "shell",
	".bash": "shell",
}

var codeExtensions = map[string]struct{}{
	".py": {}, ".js": {}, ".ts": {}, ".jsx": {}, ".tsx": {},
	".sh": {}, ".bash": {},
	".go": {}, ".rs": {}, ".java": {}, ".c": {}, ".cpp": {}, ".cc": {},
	".cxx": {}, ".h": {}, ".hpp": {}, ".rb": {}, ".php": {}, ".swift": {},
	".kt": {}, ".scala": {}, ".cs": {}, ".sql": {}, ".r": {}, ".R": {},
	".lua": {}, ".m": {}, ".ex": {}, ".exs": {}, ".jl": {}, ".dart": {},
	".vue": {}, ".svelte": {},
	".json": {}, ".html": {}, ".css": {},
	".sol": {},
}

var markdownExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
	".rst":      {},
}

// Skipped reports whether a directory name is excluded from walks.
func Skipped(name string) bool {
	if _, ok := skipDirs[name]; ok {
		return true
	}
	return strings.HasPrefix(name, ".")
}

// LanguageForExtension returns the language name for a code extension: the
// extractor's name for parseable extensions, otherwise the bare extension.
func LanguageForExtension(ext string) string {
	if name, ok := parseableLanguages[ext]; ok {
		return name
	}
	if ext == "" {
		return "unknown"
	}
	return strings.TrimPrefix(ext, ".")
}

// Code reports whether ext is a recognized code extension.
func Code(ext string) bool {
	_, ok := codeExtensions[ext]
	return ok
}

// Markdown reports whether ext is a recognized documentation extension.
func Markdown(ext string) bool {
	_, ok := markdownExtensions[ext]
	return ok
}

// Options controls discovery.
type Options struct {
	Languages   []string // restrict code files to these language names
	MaxFiles    int      // hard cap on returned entries; 0 means unlimited
	IgnoreGlobs []string // additional ignore patterns from config
}

// Files discovers indexable files under root, sorted by path. Inside a git
// repository the tracked-plus-untracked file list is authoritative; otherwise
// a root .gitignore is honored. The boolean reports whether the MaxFiles cap
// truncated the result.
func Files(root string, opts Options) ([]Entry, bool, error) {
	langSet := make(map[string]struct{}, len(opts.Languages))
	for _, l := range opts.Languages {
		langSet[l] = struct{}{}
	}
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []Entry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gitFiles != nil {
			if _, ok := gitFiles[rel]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if matchesIgnoreGlob(rel, opts.IgnoreGlobs) {
			return nil
		}

		ext := filepath.Ext(name)
		if Markdown(ext) {
			results = append(results, Entry{Path: rel, Ext: ext, Markdown: true})
			return nil
		}
		if !Code(ext) {
			return nil
		}

		langName := LanguageForExtension(ext)
		if len(langSet) > 0 {
			if _, ok := langSet[langName]; !ok {
				return nil
			}
		}

		results = append(results, Entry{Path: rel, Ext: ext, Language: langName})
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	if opts.MaxFiles > 0 && len(results) > opts.MaxFiles {
		return results[:opts.MaxFiles], true, nil
	}
	return results, false, nil
}

// Dirs returns the sorted set of directories covered by entries, including
// intermediate parents and the root itself as ".".
func Dirs(entries []Entry) []string {
	set := map[string]struct{}{".": {}}
	for _, e := range entries {
		dir := filepath.ToSlash(filepath.Dir(e.Path))
		for dir != "." && dir != "/" {
			set[dir] = struct{}{}
			dir = filepath.ToSlash(filepath.Dir(dir))
		}
	}
	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

func matchesIgnoreGlob(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
