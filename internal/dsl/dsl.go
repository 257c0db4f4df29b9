// Package dsl writes and reads the compact line-oriented index format.
//
// The line grammar:
//
//	! PROJECT_INDEX DSL v<version>
//	P root=<path> indexed_at=<ISO8601> files=<n> dirs=<n> md=<n>
//	T <tree line>
//	D <dir>/ <purpose>
//	MD <path> sections=<n>
//	F <path> lang=<lang> parsed=<0|1> [purpose=<text>]
//	I <path>= <comma-separated modules>
//	FN <path>::<name> <signature> [C=<calls>] [B=<called_by>]
//	CL <path>::<name> [extends=<list>] [type=<kind>]
//	M <path>::<class>.<name> <signature> [C=<calls>] [B=<called_by>]
//	DEP <path>= <comma-separated deps>
package dsl

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roderik/claude-code-project-index/internal/model"
)

// Version is emitted in the header line and checked by the reader.
const Version = "0.1.0"

const maxTreeLines = 1000

// escape collapses embedded newlines and tabs to single spaces so every
// payload stays on its own line.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

func joinSorted(names []string) string {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	uniq := make([]string, 0, len(set))
	for n := range set {
		uniq = append(uniq, n)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, ",")
}

// Render serializes a complete index. Output is deterministic: every map is
// walked in sorted key order.
func Render(idx *model.Index) string {
	var b strings.Builder

	fmt.Fprintf(&b, "! PROJECT_INDEX DSL v%s\n", Version)
	fmt.Fprintf(&b, "P root=%s indexed_at=%s files=%d dirs=%d md=%d\n",
		escape(idx.Root),
		idx.IndexedAt.Format(time.RFC3339),
		idx.Stats.TotalFiles,
		idx.Stats.TotalDirs,
		idx.Stats.MarkdownFiles)

	tree := idx.Tree
	if len(tree) > maxTreeLines {
		tree = tree[:maxTreeLines]
	}
	for _, t := range tree {
		fmt.Fprintf(&b, "T %s\n", escape(t))
	}

	for _, dir := range sortedKeys(idx.DirPurposes) {
		fmt.Fprintf(&b, "D %s/ %s\n", dir, escape(idx.DirPurposes[dir]))
	}

	for _, doc := range sortedDocKeys(idx.Docs) {
		if n := len(idx.Docs[doc].Sections); n > 0 {
			fmt.Fprintf(&b, "MD %s sections=%d\n", doc, n)
		}
	}

	for _, path := range sortedFileKeys(idx.Files) {
		renderFile(&b, path, idx.Files[path])
	}

	for _, src := range sortedDepKeys(idx.Deps) {
		if deps := idx.Deps[src]; len(deps) > 0 {
			fmt.Fprintf(&b, "DEP %s= %s\n", src, joinSorted(deps))
		}
	}

	return b.String()
}

func renderFile(b *strings.Builder, path string, entry *model.FileEntry) {
	parsed := "0"
	if entry.Parsed {
		parsed = "1"
	}
	fmt.Fprintf(b, "F %s lang=%s parsed=%s", path, entry.Language, parsed)
	if entry.Purpose != "" {
		fmt.Fprintf(b, " purpose=%s", escape(entry.Purpose))
	}
	b.WriteByte('\n')

	bundle := entry.Bundle
	if bundle == nil {
		return
	}

	if len(bundle.Imports) > 0 {
		fmt.Fprintf(b, "I %s= %s\n", path, joinSorted(bundle.Imports))
	}

	for _, name := range sortedFuncKeys(bundle.Functions) {
		renderRecord(b, "FN", path+"::"+name, bundle.Functions[name])
	}

	for _, name := range sortedClassKeys(bundle.Classes) {
		cls := bundle.Classes[name]
		fmt.Fprintf(b, "CL %s::%s", path, name)
		if len(cls.Inherits) > 0 {
			fmt.Fprintf(b, " extends=%s", strings.Join(cls.Inherits, ","))
		}
		if cls.Kind != model.KindPlain {
			fmt.Fprintf(b, " type=%s", cls.Kind)
		}
		b.WriteByte('\n')
		for _, mname := range sortedFuncKeys(cls.Methods) {
			renderRecord(b, "M", path+"::"+name+"."+mname, cls.Methods[mname])
		}
	}
}

func renderRecord(b *strings.Builder, tag, key string, rec *model.FunctionRecord) {
	fmt.Fprintf(b, "%s %s %s", tag, key, escape(rec.Signature))
	if len(rec.Calls) > 0 {
		fmt.Fprintf(b, " C=%s", joinSorted(rec.Calls))
	}
	if len(rec.CalledBy) > 0 {
		fmt.Fprintf(b, " B=%s", joinSorted(rec.CalledBy))
	}
	b.WriteByte('\n')
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDocKeys(m map[string]*model.DocStructure) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFileKeys(m map[string]*model.FileEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDepKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFuncKeys(m map[string]*model.FunctionRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedClassKeys(m map[string]*model.ClassRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
