package describe

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, p := range []string{
		"src/app.py",
		"src/util.py",
		"docs/notes.txt",
		"node_modules/pkg/index.js",
	} {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	lines := Tree(root)

	want := []string{
		".",
		"├── docs/",
		"├── src/ (2 files)",
		"└── README.md",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("tree = %q, want %q", lines, want)
	}
}

func TestTreeDepthCap(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c", "d", "e", "f", "g", "h")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	lines := Tree(root)

	found := false
	for _, l := range lines {
		if strings.HasSuffix(l, "└── ...") {
			found = true
		}
		if strings.Contains(l, "h/") {
			t.Errorf("directory beyond the depth cap rendered: %q", l)
		}
	}
	if !found {
		t.Errorf("no ellipsis marker in %q", lines)
	}
}

func TestFilePurpose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"src/main.py", "Application entry point"},
		{"web/index.js", "Application entry point"},
		{"pkg/parser_test.py", "Test file"},
		{"settings.py", "Configuration"},
		{"api/routes.js", "Route definitions"},
		{"db/user_model.py", "Data model"},
		{"shared/helpers.ts", "Utility functions"},
		{"auth/middleware.py", "Middleware"},
		{"src/parser.py", ""},
	}
	for _, tt := range tests {
		if got := FilePurpose(tt.path); got != tt.want {
			t.Errorf("FilePurpose(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDirPurpose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir   string
		files []string
		want  string
	}{
		{"src/models", nil, "Data models and database schemas"},
		{"app/api", nil, "API endpoints and route handlers"},
		{"unit_tests", nil, "Test files and test utilities"},
		{"core", []string{"user_model.py", "order_model.py"}, "Data models and schemas"},
		{"handlers", []string{"user_routes.py"}, "API routes and endpoints"},
		{"misc", []string{"a.py"}, ""},
	}
	for _, tt := range tests {
		if got := DirPurpose(tt.dir, tt.files); got != tt.want {
			t.Errorf("DirPurpose(%q, %v) = %q, want %q", tt.dir, tt.files, got, tt.want)
		}
	}
}

func TestScanMarkdownSections(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("# Title\n\nSome text.\n\n## Install\n\n### Details\n\n#### Too deep\n")
	for i := 0; i < 15; i++ {
		b.WriteString("## Extra section\n")
	}

	doc := ScanMarkdown(b.String())

	if len(doc.Sections) != 10 {
		t.Errorf("sections = %d, want capped at 10", len(doc.Sections))
	}
	if doc.Sections[0] != "Title" || doc.Sections[1] != "Install" {
		t.Errorf("sections = %v", doc.Sections[:3])
	}
	for _, s := range doc.Sections {
		if s == "Too deep" {
			t.Error("level-4 header captured")
		}
	}
}

func TestScanMarkdownHints(t *testing.T) {
	t.Parallel()

	content := "Config is stored in `config/settings.py` for all environments.\n" +
		"The module src/core contains the engine.\n" +
		"See https://example.com/docs for more.\n" +
		"Look in docs/api.md for details.\n" +
		"Everything is located in config/settings.py as noted above.\n"

	doc := ScanMarkdown(content)

	want := []string{"config/settings.py", "docs/api.md", "src/core"}
	if !reflect.DeepEqual(doc.Hints, want) {
		t.Errorf("hints = %v, want %v", doc.Hints, want)
	}
}

func TestScanMarkdownLimit(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("x", markdownScanLimit) + "\n# Late Header\n"

	doc := ScanMarkdown(content)

	if len(doc.Sections) != 0 {
		t.Errorf("sections past the scan limit captured: %v", doc.Sections)
	}
}
