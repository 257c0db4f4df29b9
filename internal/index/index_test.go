package index

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/roderik/claude-code-project-index/internal/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app.py": "import os\n\n" +
			"def helper():\n    return 1\n\n" +
			"def main():\n    helper()\n",
		"web/client.js": "import { render } from './lib';\n\n" +
			"function boot(port) {\n  return port;\n}\n",
		"web/lib.js":        "function render(el) {\n  return el;\n}\n",
		"scripts/deploy.sh": "deploy() {\n  echo $1\n}\n",
		"README.md":         "# Project\n\n## Usage\n",
		"data.json":         "{}\n",
	})

	var stderr bytes.Buffer
	idx, err := New(root, config.Default(), &stderr).Build()
	if err != nil {
		t.Fatal(err)
	}

	if idx.Stats.TotalFiles != 5 {
		t.Errorf("total files = %d, want 5", idx.Stats.TotalFiles)
	}
	if idx.Stats.TotalDirs != 4 {
		t.Errorf("total dirs = %d, want 4", idx.Stats.TotalDirs)
	}
	if idx.Stats.MarkdownFiles != 1 {
		t.Errorf("markdown files = %d", idx.Stats.MarkdownFiles)
	}
	if idx.Stats.FullyParsed["python"] != 1 || idx.Stats.FullyParsed["javascript"] != 2 || idx.Stats.FullyParsed["shell"] != 1 {
		t.Errorf("fully parsed = %v", idx.Stats.FullyParsed)
	}
	if idx.Stats.ListedOnly["json"] != 1 {
		t.Errorf("listed only = %v", idx.Stats.ListedOnly)
	}

	doc := idx.Docs["README.md"]
	if doc == nil || !reflect.DeepEqual(doc.Sections, []string{"Project", "Usage"}) {
		t.Errorf("README doc = %+v", doc)
	}

	app := idx.Files["src/app.py"]
	if app == nil || !app.Parsed {
		t.Fatalf("src/app.py = %+v", app)
	}
	if app.Purpose != "Application entry point" {
		t.Errorf("app purpose = %q", app.Purpose)
	}
	if got := idx.CallGraph["src/app.py::main"]; !reflect.DeepEqual(got, []string{"helper"}) {
		t.Errorf("call graph = %v", got)
	}
	if got := app.Bundle.Functions["helper"].CalledBy; !reflect.DeepEqual(got, []string{"main"}) {
		t.Errorf("helper.CalledBy = %v", got)
	}

	if got := idx.Deps["src/app.py"]; !reflect.DeepEqual(got, []string{"os"}) {
		t.Errorf("app deps = %v", got)
	}
	if got := idx.Deps["web/client.js"]; !reflect.DeepEqual(got, []string{"web/lib.js"}) {
		t.Errorf("client deps = %v", got)
	}

	if got := idx.DirPurposes["scripts"]; got != "Build and utility scripts" {
		t.Errorf("scripts purpose = %q", got)
	}
	if _, ok := idx.DirPurposes["."]; ok {
		t.Error("root directory must not get a purpose entry")
	}

	if len(idx.Tree) == 0 || idx.Tree[0] != "." {
		t.Errorf("tree = %v", idx.Tree)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected warnings: %s", stderr.String())
	}
}

func TestBuildSkipsOversizedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"small.py": "x = 1\n",
		"huge.py":  strings.Repeat("# padding\n", 100),
	})

	cfg := config.Default()
	cfg.MaxFileSize = 64

	var stderr bytes.Buffer
	idx, err := New(root, cfg, &stderr).Build()
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := idx.Files["huge.py"]; ok {
		t.Error("oversized file indexed")
	}
	if _, ok := idx.Files["small.py"]; !ok {
		t.Error("small file missing")
	}
	if !strings.Contains(stderr.String(), "huge.py") {
		t.Errorf("no skip warning: %q", stderr.String())
	}
}

func TestBuildWarnsOnTruncation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py": "x = 1\n",
		"b.py": "x = 1\n",
		"c.py": "x = 1\n",
	})

	cfg := config.Default()
	cfg.MaxFiles = 2

	var stderr bytes.Buffer
	idx, err := New(root, cfg, &stderr).Build()
	if err != nil {
		t.Fatal(err)
	}

	if idx.Stats.TotalFiles != 2 {
		t.Errorf("total files = %d", idx.Stats.TotalFiles)
	}
	if !strings.Contains(stderr.String(), "file limit") {
		t.Errorf("no truncation warning: %q", stderr.String())
	}
}

func TestBuildLanguageFilter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py": "def f():\n    return 1\n",
		"b.js": "function g() {\n  return 2;\n}\n",
	})

	cfg := config.Default()
	cfg.Languages = []string{"python"}

	var stderr bytes.Buffer
	idx, err := New(root, cfg, &stderr).Build()
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := idx.Files["a.py"]; !ok {
		t.Error("python file missing")
	}
	if _, ok := idx.Files["b.js"]; ok {
		t.Error("filtered language indexed")
	}
}
