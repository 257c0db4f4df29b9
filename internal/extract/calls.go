// Package extract implements the built-in line/regex signature extractors
// for Python, JavaScript/TypeScript, and shell. The extractors are total:
// any input, including binary garbage, yields a well-formed bundle.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/model"
)

var (
	wordCallRe   = regexp.MustCompile(`\b(\w+)\s*\(`)
	methodCallRe = regexp.MustCompile(`\b\w+\.(\w+)\s*\(`)
)

// Control-flow keywords and builtins that look like calls but aren't worth
// reporting.
var pythonCallExclude = map[string]struct{}{
	"if": {}, "elif": {}, "while": {}, "for": {}, "with": {}, "except": {},
	"def": {}, "class": {}, "return": {}, "yield": {}, "raise": {},
	"assert": {}, "print": {}, "len": {}, "str": {}, "int": {}, "float": {},
	"bool": {}, "list": {}, "dict": {}, "set": {}, "tuple": {}, "type": {},
	"isinstance": {}, "issubclass": {}, "super": {}, "range": {},
	"enumerate": {}, "zip": {}, "map": {}, "filter": {}, "sorted": {},
	"reversed": {}, "open": {}, "input": {}, "eval": {},
}

var jsCallExclude = map[string]struct{}{
	"if": {}, "while": {}, "for": {}, "switch": {}, "catch": {},
	"function": {}, "class": {}, "return": {}, "throw": {}, "new": {},
	"typeof": {}, "instanceof": {}, "void": {}, "console": {}, "Array": {},
	"Object": {}, "String": {}, "Number": {}, "Boolean": {}, "Promise": {},
	"Math": {}, "Date": {}, "JSON": {}, "parseInt": {}, "parseFloat": {},
}

// PythonCalls returns the sorted, deduplicated set of known symbols invoked in
// a Python function body.
func PythonCalls(body string, known map[string]struct{}) []string {
	return wordCalls(body, known, pythonCallExclude)
}

// JavaScriptCalls is the JS/TS variant of PythonCalls.
func JavaScriptCalls(body string, known map[string]struct{}) []string {
	return wordCalls(body, known, jsCallExclude)
}

func wordCalls(body string, known, exclude map[string]struct{}) []string {
	calls := make(map[string]struct{})
	for _, m := range wordCallRe.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if _, excluded := exclude[name]; excluded {
			continue
		}
		if _, ok := known[name]; ok {
			calls[name] = struct{}{}
		}
	}
	// self.method(), obj.method()
	for _, m := range methodCallRe.FindAllStringSubmatch(body, -1) {
		if _, ok := known[m[1]]; ok {
			calls[m[1]] = struct{}{}
		}
	}
	return sortedSet(calls)
}

// ShellCalls finds known function names invoked as bare words: at line start,
// after a control operator, or inside command substitution.
func ShellCalls(body string, known map[string]struct{}) []string {
	calls := make(map[string]struct{})
	for name := range known {
		quoted := regexp.QuoteMeta(name)
		patterns := []string{
			`(?m)^\s*` + quoted + `\b`,
			`[;&|]\s*` + quoted + `\b`,
			`\$\(` + quoted + `\b`,
			"`" + quoted + `\b`,
		}
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				continue
			}
			if re.MatchString(body) {
				calls[name] = struct{}{}
				break
			}
		}
	}
	return sortedSet(calls)
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// InferValueKind classifies an initializer expression by its first characters.
func InferValueKind(value string) model.ValueKind {
	v := strings.TrimSpace(value)
	switch {
	case strings.HasPrefix(v, "{") || strings.HasPrefix(v, "["):
		return model.KindCollection
	case strings.HasPrefix(v, "'") || strings.HasPrefix(v, `"`) || strings.HasPrefix(v, "`"):
		return model.KindString
	case isNumeric(v):
		return model.KindNumber
	default:
		return model.KindValue
	}
}

func isNumeric(v string) bool {
	stripped := strings.ReplaceAll(strings.ReplaceAll(v, ".", ""), "-", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
