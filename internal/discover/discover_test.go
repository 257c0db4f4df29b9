package discover

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("content\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestFilesDiscovery(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"src/app.py",
		"src/util.js",
		"main.go",
		"docs/README.md",
		"node_modules/pkg/index.js",
		".hidden/secret.py",
		"data.bin",
	)

	entries, truncated, err := Files(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if truncated {
		t.Error("unexpected truncation")
	}

	want := []string{"docs/README.md", "main.go", "src/app.py", "src/util.js"}
	if got := paths(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}

	byPath := make(map[string]Entry)
	for _, e := range entries {
		byPath[e.Path] = e
	}
	if !byPath["docs/README.md"].Markdown {
		t.Error("README.md not flagged as markdown")
	}
	if got := byPath["src/app.py"].Language; got != "python" {
		t.Errorf("app.py language = %q", got)
	}
	if got := byPath["main.go"].Language; got != "go" {
		t.Errorf("main.go language = %q", got)
	}
}

func TestFilesLanguageFilter(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "a.py", "b.js", "README.md")

	entries, _, err := Files(root, Options{Languages: []string{"python"}})
	if err != nil {
		t.Fatal(err)
	}

	// Markdown is not subject to the language filter.
	want := []string{"README.md", "a.py"}
	if got := paths(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestFilesIgnoreGlobs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "keep.py", "gen/out.py", "skip_me.py")

	entries, _, err := Files(root, Options{
		IgnoreGlobs: []string{"gen/**", "skip_*.py"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := paths(entries); !reflect.DeepEqual(got, []string{"keep.py"}) {
		t.Errorf("paths = %v", got)
	}
}

func TestFilesMaxFilesTruncation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "a.py", "b.py", "c.py", "d.py", "e.py")

	entries, truncated, err := Files(root, Options{MaxFiles: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !truncated {
		t.Error("expected truncation")
	}
	if got := paths(entries); !reflect.DeepEqual(got, []string{"a.py", "b.py", "c.py"}) {
		t.Errorf("paths = %v", got)
	}
}

func TestFilesHonorsGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "keep.py", "secret.py")
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("secret.py\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, _, err := Files(root, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if got := paths(entries); !reflect.DeepEqual(got, []string{"keep.py"}) {
		t.Errorf("paths = %v", got)
	}
}

func TestDirsIncludesParents(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Path: "a/b/c.py"},
		{Path: "a/d.py"},
		{Path: "top.py"},
	}

	want := []string{".", "a", "a/b"}
	if got := Dirs(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("dirs = %v, want %v", got, want)
	}
}

func TestLanguageForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".py", "python"},
		{".tsx", "typescript"},
		{".bash", "shell"},
		{".go", "go"},
		{".sol", "sol"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := LanguageForExtension(tt.ext); got != tt.want {
			t.Errorf("LanguageForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestSkipped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"node_modules", true},
		{"__pycache__", true},
		{".anything", true},
		{"src", false},
		{"env", true},
	}
	for _, tt := range tests {
		if got := Skipped(tt.name); got != tt.want {
			t.Errorf("Skipped(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
