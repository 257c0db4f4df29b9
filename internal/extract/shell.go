package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/model"
)

var (
	shFuncRe1   = regexp.MustCompile(`^(\w+)\s*\(\)\s*\{?`)
	shFuncRe2   = regexp.MustCompile(`^function\s+(\w+)\s*\{?`)
	shExportRe  = regexp.MustCompile(`^export\s+([A-Z_][A-Z0-9_]*)(=(.*))?`)
	shVarRe     = regexp.MustCompile(`^([A-Z_][A-Z0-9_]*)=(.+)$`)
	shParamRe   = regexp.MustCompile(`\$(\d+)`)
	shSourceRes = []*regexp.Regexp{
		regexp.MustCompile(`^(?:source|\.)\s+['"]([^'"]+)['"]`),
		regexp.MustCompile(`^(?:source|\.)\s+(\$\([^)]+\)\S*)`),
		regexp.MustCompile(`^(?:source|\.)\s+(\S+)`),
	}
)

// Parameters referenced beyond this many lines into a function body are not
// attributed to it.
const shParamLookahead = 20

// Shell extracts functions, variables and sourced files from shell script
// source. Shell declares no parameters, so signatures are inferred from the
// positional references the body makes.
func Shell(content string) *model.SignatureBundle {
	result := model.NewBundle()
	lines := strings.Split(content, "\n")

	allFunctions := make(map[string]struct{})
	for _, line := range lines {
		if m := shFuncRe1.FindStringSubmatch(line); m != nil {
			allFunctions[m[1]] = struct{}{}
		}
		if m := shFuncRe2.FindStringSubmatch(line); m != nil {
			allFunctions[m[1]] = struct{}{}
		}
	}

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#!") {
			continue
		}

		var funcName string
		if m := shFuncRe1.FindStringSubmatch(stripped); m != nil {
			funcName = m[1]
		} else if m := shFuncRe2.FindStringSubmatch(stripped); m != nil {
			funcName = m[1]
		}
		if funcName != "" {
			recordShellFunction(result, lines, i, funcName, allFunctions)
			continue
		}

		if m := shExportRe.FindStringSubmatch(stripped); m != nil {
			if m[3] != "" {
				result.Exports[m[1]] = shellValueKind(m[3])
			}
			continue
		}

		if m := shVarRe.FindStringSubmatch(stripped); m != nil {
			name := m[1]
			if _, exported := result.Exports[name]; !exported && !contains(result.Variables, name) {
				result.Variables = append(result.Variables, name)
			}
			continue
		}

		for _, re := range shSourceRes {
			if m := re.FindStringSubmatch(stripped); m != nil {
				sourced := strings.TrimSpace(m[1])
				if sourced != "" && !contains(result.Sources, sourced) {
					result.Sources = append(result.Sources, sourced)
				}
				break
			}
		}
	}

	return result
}

func recordShellFunction(result *model.SignatureBundle, lines []string, i int, name string, allFunctions map[string]struct{}) {
	info := &model.FunctionRecord{}

	if i > 0 {
		prev := strings.TrimSpace(lines[i-1])
		if strings.HasPrefix(prev, "#") && !strings.HasPrefix(prev, "#!") {
			info.Doc = strings.TrimSpace(prev[1:])
		}
	}

	info.Signature = inferShellSignature(lines, i)

	if body := shellBody(lines, i); body != "" {
		info.Calls = ShellCalls(body, allFunctions)
	}

	result.Functions[name] = info
}

// bodyLines returns the declaration line's remainder (one-line functions keep
// their body on the declaration line) followed by subsequent lines, capped at
// limit entries. Zero limit means unbounded.
func bodyLines(lines []string, i, limit int) []string {
	var out []string
	if brace := strings.Index(lines[i], "{"); brace >= 0 {
		out = append(out, lines[i][brace:])
	}
	for j := i + 1; j < len(lines); j++ {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, lines[j])
	}
	return out
}

// inferShellSignature scans a bounded window of the function body for $1, $2,
// ... references; the signature lists consecutive placeholders up to the
// highest index seen.
func inferShellSignature(lines []string, i int) string {
	maxParam := 0
	depth := 0
	inBody := false

	for _, line := range bodyLines(lines, i, shParamLookahead) {
		if strings.Contains(line, "{") {
			depth += strings.Count(line, "{")
			inBody = true
		}
		closed := false
		if strings.Contains(line, "}") {
			depth -= strings.Count(line, "}")
			if depth <= 0 {
				closed = true
			}
		}
		if inBody {
			for _, m := range shParamRe.FindAllStringSubmatch(line, -1) {
				if n, err := strconv.Atoi(m[1]); err == nil && n > maxParam {
					maxParam = n
				}
			}
		}
		if closed {
			break
		}
	}

	if maxParam == 0 {
		return "()"
	}
	parts := make([]string, 0, maxParam)
	for n := 1; n <= maxParam; n++ {
		if n == 1 {
			parts = append(parts, "$1")
		} else {
			parts = append(parts, fmt.Sprintf("${%d}", n))
		}
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func shellBody(lines []string, i int) string {
	var body []string
	depth := 0
	inBody := false
	for _, line := range bodyLines(lines, i, 0) {
		if strings.Contains(line, "{") {
			depth += strings.Count(line, "{")
			inBody = true
		}
		if inBody {
			body = append(body, line)
		}
		if strings.Contains(line, "}") {
			depth -= strings.Count(line, "}")
			if depth <= 0 {
				break
			}
		}
	}
	return strings.Join(body, "\n")
}

// shellValueKind is like InferValueKind but shell values have no collection
// literals, so only strings and numbers are distinguished.
func shellValueKind(value string) model.ValueKind {
	v := strings.TrimSpace(value)
	switch {
	case strings.HasPrefix(v, "'") || strings.HasPrefix(v, `"`):
		return model.KindString
	case isDigits(v):
		return model.KindNumber
	default:
		return model.KindValue
	}
}

func isDigits(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
