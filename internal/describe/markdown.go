package describe

import (
	"regexp"
	"sort"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/model"
)

// Only the first 5KB of a document is scanned.
const markdownScanLimit = 5000

const (
	maxSections = 10
	maxHints    = 5
)

var mdHeaderRe = regexp.MustCompile(`(?m)^#{1,3}\s+(.+)$`)

// Phrases that tend to point at real paths in a codebase.
var mdHintRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:located?|found?|stored?)\s+in\s+` + "`?" + `([\w\-\./]+)` + "`?"),
	regexp.MustCompile(`(?i)` + "`?" + `([\w\-\./]+)` + "`?" + `\s+(?:contains?|houses?|holds?)`),
	regexp.MustCompile(`(?i)(?:see|check|look)\s+(?:in\s+)?` + "`?" + `([\w\-\./]+)` + "`?" + `\s+for`),
	regexp.MustCompile(`(?i)(?:file|module|component)\s+` + "`?" + `([\w\-\./]+)` + "`?"),
}

// ScanMarkdown scans a document for its section outline and for architecture
// hints: captured tokens that look like repository paths.
func ScanMarkdown(content string) *model.DocStructure {
	if len(content) > markdownScanLimit {
		content = content[:markdownScanLimit]
	}

	doc := &model.DocStructure{}
	for _, m := range mdHeaderRe.FindAllStringSubmatch(content, -1) {
		doc.Sections = append(doc.Sections, m[1])
		if len(doc.Sections) == maxSections {
			break
		}
	}

	seen := make(map[string]struct{})
	for _, re := range mdHintRes {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			hint := m[1]
			if !strings.Contains(hint, "/") || strings.HasPrefix(hint, "http") {
				continue
			}
			if _, dup := seen[hint]; dup {
				continue
			}
			seen[hint] = struct{}{}
			doc.Hints = append(doc.Hints, hint)
		}
	}
	sort.Strings(doc.Hints)
	if len(doc.Hints) > maxHints {
		doc.Hints = doc.Hints[:maxHints]
	}
	return doc
}
