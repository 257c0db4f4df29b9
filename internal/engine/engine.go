// Package engine chooses how each file gets structurally parsed: an external
// structural-match tool (ast-grep) when available, an external line-match tool
// (ripgrep) for Solidity, an in-process tree-sitter pass for Go, or the
// built-in extractors. Every path is total; failures of any kind downgrade the
// file to a listed-only result.
package engine

import (
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/roderik/claude-code-project-index/internal/extract"
	"github.com/roderik/claude-code-project-index/internal/model"
)

// Selector dispatches files to extraction engines. It carries its own
// subprocess timeout rather than relying on OS defaults, so one pathological
// file cannot stall the batch.
type Selector struct {
	Timeout time.Duration

	// lookPath is swappable so tests can simulate missing binaries.
	lookPath func(file string) (string, error)
}

// New returns a selector with the given subprocess timeout.
func New(timeout time.Duration) *Selector {
	return &Selector{Timeout: timeout, lookPath: exec.LookPath}
}

// astGrepLangs maps extensions to ast-grep language aliases.
var astGrepLangs = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "tsx",
	".go":   "go",
	".rs":   "rust",
	".java": "java",
	".cs":   "csharp",
	".c":    "c",
	".h":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
}

// Extract produces a signature bundle for one file. The returned bundle is
// never nil; files no engine can handle come back empty and are recorded as
// listed-only by the caller.
func (s *Selector) Extract(path string, content []byte) *model.SignatureBundle {
	ext := strings.ToLower(filepath.Ext(path))

	// Solidity has no structural engine; the line-match fallback is the
	// only option.
	if ext == ".sol" {
		if b := s.solidityWithRipgrep(path); b != nil && b.Parsed() {
			return b
		}
		return model.NewBundle()
	}

	if lang, ok := astGrepLangs[ext]; ok {
		if b := s.withAstGrep(path, ext, lang); b != nil && b.Parsed() {
			// A non-empty structural result wins exclusively.
			return b
		}
		if ext == ".go" {
			if b := s.goStructural(content); b != nil && b.Parsed() {
				return b
			}
		}
	}

	switch ext {
	case ".py":
		return extract.Python(string(content))
	case ".js", ".jsx", ".ts", ".tsx":
		return extract.JavaScript(string(content))
	case ".sh", ".bash":
		return extract.Shell(string(content))
	}

	return model.NewBundle()
}

// Parseable reports whether the selector has any engine for the extension
// beyond listing the file.
func Parseable(ext string) bool {
	ext = strings.ToLower(ext)
	if ext == ".sol" {
		return true
	}
	if _, ok := astGrepLangs[ext]; ok {
		return true
	}
	switch ext {
	case ".sh", ".bash":
		return true
	}
	return false
}
