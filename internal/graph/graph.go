// Package graph runs the second pass over all extracted bundles: the flat
// bidirectional call index and the relative-import dependency graph.
package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/model"
)

// sourceExtensions are tried, in order, when resolving a relative import to
// an indexed file. The empty entry matches imports that already carry their
// extension.
var sourceExtensions = []string{".py", ".js", ".ts", ".jsx", ".tsx", ""}

// BuildCallGraph registers every record with a non-empty calls set under its
// qualified "path::name" key and fills in the inverse called_by sets, keyed by
// unqualified callee name. Two unrelated symbols sharing a name are
// indistinguishable in the inverse index. Returns the forward map.
func BuildCallGraph(files map[string]*model.FileEntry) map[string][]string {
	forward := make(map[string][]string)
	calledBy := make(map[string][]string)

	appendCaller := func(callee, caller string) {
		for _, existing := range calledBy[callee] {
			if existing == caller {
				return
			}
		}
		calledBy[callee] = append(calledBy[callee], caller)
	}

	for _, filePath := range sortedKeys(files) {
		entry := files[filePath]
		if entry.Bundle == nil {
			continue
		}
		for _, name := range sortedFuncs(entry.Bundle.Functions) {
			fn := entry.Bundle.Functions[name]
			if len(fn.Calls) == 0 {
				continue
			}
			forward[filePath+"::"+name] = fn.Calls
			for _, callee := range fn.Calls {
				appendCaller(callee, name)
			}
		}
		for _, className := range sortedClasses(entry.Bundle.Classes) {
			cls := entry.Bundle.Classes[className]
			for _, methodName := range sortedFuncs(cls.Methods) {
				m := cls.Methods[methodName]
				if len(m.Calls) == 0 {
					continue
				}
				qualified := className + "." + methodName
				forward[filePath+"::"+qualified] = m.Calls
				for _, callee := range m.Calls {
					appendCaller(callee, qualified)
				}
			}
		}
	}

	// Write the inverse sets back onto the records. Records stored with only
	// a signature gain their first optional field here; since every record is
	// one type, no upgrade step is needed beyond assignment.
	for _, filePath := range sortedKeys(files) {
		entry := files[filePath]
		if entry.Bundle == nil {
			continue
		}
		for name, fn := range entry.Bundle.Functions {
			if callers := calledBy[name]; len(callers) > 0 {
				fn.CalledBy = sortedUnique(callers)
			}
		}
		for className, cls := range entry.Bundle.Classes {
			for methodName, m := range cls.Methods {
				callers := append([]string(nil), calledBy[methodName]...)
				callers = append(callers, calledBy[className+"."+methodName]...)
				if len(callers) > 0 {
					m.CalledBy = sortedUnique(callers)
				}
			}
		}
	}

	return forward
}

// BuildDependencyGraph resolves each bundle's imports. Relative imports
// (./ or ../) resolve within the index: the up-level count walks parent
// directories, then each known source extension is tried against the indexed
// path set; relative imports with no indexed target are dropped. Absolute and
// package imports are kept verbatim as unresolved external references.
func BuildDependencyGraph(files map[string]*model.FileEntry) map[string][]string {
	deps := make(map[string][]string)

	for _, filePath := range sortedKeys(files) {
		entry := files[filePath]
		if entry.Bundle == nil || len(entry.Bundle.Imports) == 0 {
			continue
		}
		fileDir := path.Dir(filePath)

		var resolved []string
		for _, imp := range entry.Bundle.Imports {
			if !strings.HasPrefix(imp, ".") {
				resolved = append(resolved, imp)
				continue
			}
			target := resolveRelative(fileDir, imp)
			for _, ext := range sourceExtensions {
				candidate := target + ext
				if _, ok := files[candidate]; ok {
					resolved = append(resolved, candidate)
					break
				}
			}
		}
		if len(resolved) > 0 {
			deps[filePath] = resolved
		}
	}

	return deps
}

func resolveRelative(fileDir, imp string) string {
	if strings.HasPrefix(imp, "./") {
		return path.Join(fileDir, imp[2:])
	}
	if strings.HasPrefix(imp, "../") {
		parts := strings.Split(imp, "/")
		upLevels := 0
		var remaining []string
		for _, p := range parts {
			if p == ".." {
				upLevels++
			} else if p != "" {
				remaining = append(remaining, p)
			}
		}
		target := fileDir
		for i := 0; i < upLevels; i++ {
			target = path.Dir(target)
		}
		return path.Join(append([]string{target}, remaining...)...)
	}
	// "from . import X" style: the directory itself.
	return fileDir
}

func sortedKeys(m map[string]*model.FileEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFuncs(m map[string]*model.FunctionRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedClasses(m map[string]*model.ClassRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUnique(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	var out []string
	for _, s := range list {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
