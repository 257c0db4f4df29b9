package extract

import (
	"regexp"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/model"
)

var (
	jsFuncNameRe   = regexp.MustCompile(`(?:async\s+)?function\s+(\w+)`)
	jsArrowNameRe  = regexp.MustCompile(`(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?\(`)
	jsMethodNameRe = regexp.MustCompile(`(\w+)\s*\([^)]*\)\s*\{`)

	jsImportRe  = regexp.MustCompile(`import\s+(?:([^{}\s]+)|\{([^}]+)\}|\*\s+as\s+(\w+))\s+from\s+['"]([^'"]+)['"]`)
	jsRequireRe = regexp.MustCompile(`(?:const|let|var)\s+(?:\{[^}]+\}|\w+)\s*=\s*require\s*\(['"]([^'"]+)['"]\)`)

	jsTypeAliasRe = regexp.MustCompile(`(?ms)(?:export\s+)?type\s+(\w+)\s*=\s*(.+?)(?:;\s*(?:(?:export\s+)?(?:type|const|let|var|function|class|interface|enum)\s+|//|$))`)
	jsInterfaceRe = regexp.MustCompile(`(?:export\s+)?interface\s+(\w+)(?:\s+extends\s+([^{]+))?\s*\{`)
	jsEnumRe      = regexp.MustCompile(`(?:export\s+)?enum\s+(\w+)\s*\{`)
	jsEnumValRe   = regexp.MustCompile(`(\w+)\s*(?:=\s*[^,\n]+)?`)
	jsConstRe     = regexp.MustCompile(`(?:export\s+)?const\s+([A-Z_][A-Z0-9_]*)\s*=\s*([^;]+)`)
	jsVarRe       = regexp.MustCompile(`(?:export\s+)?(?:let|const)\s+([a-z]\w*)\s*(?::\s*\w+)?\s*=`)

	jsClassRe = regexp.MustCompile(`(?:export\s+)?class\s+(\w+)(?:\s+extends\s+(\w+))?`)
	jsDocRe   = regexp.MustCompile(`/\*\*\s*\n?\s*\*?\s*([^@\n]+)`)

	jsMethodRe      = regexp.MustCompile(`(?m)^\s*(async\s+)?(\w+)\s*\((.*?)\)\s*(?::\s*([^{]+))?\s*\{`)
	jsArrowMethodRe = regexp.MustCompile(`(?m)^\s*(\w+)\s*=\s*(?:async\s+)?\(([^)]*)\)\s*(?::\s*([^=]+))?\s*=>`)
	jsCtorRe        = regexp.MustCompile(`(?m)^\s*constructor\s*\(([^)]*)\)\s*\{`)
	jsStaticConstRe = regexp.MustCompile(`static\s+([A-Z_][A-Z0-9_]*)\s*=\s*([^;]+)`)

	jsFuncDeclRe  = regexp.MustCompile(`(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*(?:<[^>]+>)?\s*\(([^)]*)\)(?:\s*:\s*([^{]+))?`)
	jsArrowFuncRe = regexp.MustCompile(`(?:export\s+)?const\s+(\w+)\s*(?::\s*[^=]+)?\s*=\s*(?:async\s+)?\(([^)]*)\)\s*(?::\s*([^=]+))?\s*=>`)
)

// Method-shaped matches that are really keywords or accessors.
var jsMethodExclude = map[string]struct{}{
	"get": {}, "set": {}, "if": {}, "for": {}, "while": {},
	"switch": {}, "catch": {}, "try": {},
}

// Scan cost caps for pathological files.
const (
	jsBraceSearchWindow = 100
	jsMethodBodyWindow  = 3000
	jsFuncBodyWindow    = 5000
)

type span struct{ start, end int }

// JavaScript extracts a signature bundle from JavaScript or TypeScript source
// using regex matching repaired by brace counting. The first pass is
// deliberately permissive: it may collect names that aren't functions, which
// only widens the known-symbol set used for call detection.
func JavaScript(content string) *model.SignatureBundle {
	result := model.NewBundle()

	allFunctions := make(map[string]struct{})
	for _, m := range jsFuncNameRe.FindAllStringSubmatch(content, -1) {
		allFunctions[m[1]] = struct{}{}
	}
	for _, m := range jsArrowNameRe.FindAllStringSubmatch(content, -1) {
		allFunctions[m[1]] = struct{}{}
	}
	for _, m := range jsMethodNameRe.FindAllStringSubmatch(content, -1) {
		allFunctions[m[1]] = struct{}{}
	}

	// Imports: default/named/namespace distinction is discarded.
	for _, m := range jsImportRe.FindAllStringSubmatch(content, -1) {
		if m[4] != "" {
			result.Imports = append(result.Imports, m[4])
		}
	}
	for _, m := range jsRequireRe.FindAllStringSubmatch(content, -1) {
		result.Imports = append(result.Imports, m[1])
	}

	extractTypeAliases(content, result)
	extractInterfaces(content, result)
	extractEnums(content, result)

	for _, m := range jsConstRe.FindAllStringSubmatch(content, -1) {
		result.Constants[m[1]] = InferValueKind(m[2])
	}
	for _, m := range jsVarRe.FindAllStringSubmatch(content, -1) {
		if !contains(result.Variables, m[1]) {
			result.Variables = append(result.Variables, m[1])
		}
	}

	classBounds := extractClasses(content, result)
	for _, cb := range classBounds {
		extractMethods(content[cb.bounds.start:cb.bounds.end], result.Classes[cb.name], allFunctions)
	}
	extractStandaloneFunctions(content, result, classBounds, allFunctions)

	return result
}

func extractTypeAliases(content string, result *model.SignatureBundle) {
	for _, idx := range jsTypeAliasRe.FindAllStringSubmatchIndex(content, -1) {
		name := content[idx[2]:idx[3]]
		clean := collapseSpaces(content[idx[4]:idx[5]])

		// A multi-line object-literal type gets truncated by the regex;
		// repair it with an explicit brace scan.
		if strings.HasPrefix(clean, "{") && strings.Count(clean, "{") > strings.Count(clean, "}") {
			start := idx[4]
			depth := 0
			for i := start; i < len(content); i++ {
				switch content[i] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						clean = collapseSpaces(content[start : i+1])
						i = len(content)
					}
				}
			}
		}
		result.TypeAliases[name] = clean
	}
}

func extractInterfaces(content string, result *model.SignatureBundle) {
	for _, idx := range jsInterfaceRe.FindAllStringSubmatchIndex(content, -1) {
		name := content[idx[2]:idx[3]]
		info := &model.InterfaceRecord{}
		if idx[4] >= 0 {
			for _, e := range strings.Split(content[idx[4]:idx[5]], ",") {
				if e = strings.TrimSpace(e); e != "" {
					info.Extends = append(info.Extends, e)
				}
			}
		}
		info.Doc = precedingBlockComment(content[:idx[0]])
		result.Interfaces[name] = info
	}
}

func extractEnums(content string, result *model.SignatureBundle) {
	for _, idx := range jsEnumRe.FindAllStringSubmatchIndex(content, -1) {
		name := content[idx[2]:idx[3]]
		// The opening brace is part of the match, so scanning starts at
		// depth 1 regardless of surrounding nesting.
		bodyStart := idx[1]
		depth := 1
		bodyEnd := bodyStart
		for i := bodyStart; i < len(content); i++ {
			switch content[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				bodyEnd = i
				break
			}
		}
		var values []string
		for _, m := range jsEnumValRe.FindAllStringSubmatch(content[bodyStart:bodyEnd], -1) {
			values = append(values, m[1])
		}
		result.Enums[name] = &model.EnumRecord{Values: values}
	}
}

type classBound struct {
	name   string
	bounds span
}

func extractClasses(content string, result *model.SignatureBundle) []classBound {
	var bounds []classBound
	for _, idx := range jsClassRe.FindAllStringSubmatchIndex(content, -1) {
		name := content[idx[2]:idx[3]]
		start := idx[0]

		depth := 0
		inClass := false
		end := start
		for i := idx[1]; i < len(content); i++ {
			switch content[i] {
			case '{':
				inClass = true
				depth++
			case '}':
				depth--
				if depth == 0 && inClass {
					end = i
					i = len(content)
				}
			}
		}
		bounds = append(bounds, classBound{name, span{start, end}})

		info := &model.ClassRecord{
			Methods:        make(map[string]*model.FunctionRecord),
			ClassConstants: make(map[string]model.ValueKind),
		}
		if idx[4] >= 0 {
			base := content[idx[4]:idx[5]]
			info.Inherits = []string{base}
			if strings.Contains(strings.ToLower(base), "error") {
				info.Kind = model.KindException
			}
		}
		info.Doc = precedingBlockComment(content[:start])
		result.Classes[name] = info
	}
	return bounds
}

func extractMethods(classContent string, cls *model.ClassRecord, allFunctions map[string]struct{}) {
	record := func(name, params, returnType, matched string, bodyFrom int) {
		if _, excluded := jsMethodExclude[name]; excluded {
			return
		}
		info := &model.FunctionRecord{}
		sig := "(" + collapseSpaces(params) + ")"
		if returnType != "" {
			sig += ": " + strings.TrimSpace(returnType)
		}
		if strings.Contains(matched, "async") {
			sig = "async " + sig
		}
		info.Signature = sig
		if body, ok := balancedBody(classContent, bodyFrom, jsMethodBodyWindow); ok {
			info.Calls = JavaScriptCalls(body, allFunctions)
		}
		cls.Methods[name] = info
	}

	for _, idx := range jsMethodRe.FindAllStringSubmatchIndex(classContent, -1) {
		name := classContent[idx[4]:idx[5]]
		if name == "constructor" {
			continue // handled by the constructor pattern below
		}
		ret := ""
		if idx[8] >= 0 {
			ret = classContent[idx[8]:idx[9]]
		}
		// The match consumes the opening brace; back up one so the body
		// scan starts at the method's own brace.
		record(name, classContent[idx[6]:idx[7]], ret, classContent[idx[0]:idx[1]], idx[1]-1)
	}
	for _, idx := range jsArrowMethodRe.FindAllStringSubmatchIndex(classContent, -1) {
		ret := ""
		if idx[6] >= 0 {
			ret = classContent[idx[6]:idx[7]]
		}
		record(classContent[idx[2]:idx[3]], classContent[idx[4]:idx[5]], ret, classContent[idx[0]:idx[1]], idx[1])
	}
	for _, idx := range jsCtorRe.FindAllStringSubmatchIndex(classContent, -1) {
		// Recorded under a canonical fixed name.
		record("__init__", classContent[idx[2]:idx[3]], "", classContent[idx[0]:idx[1]], idx[1]-1)
	}

	for _, m := range jsStaticConstRe.FindAllStringSubmatch(classContent, -1) {
		cls.ClassConstants[m[1]] = InferValueKind(m[2])
	}
}

func extractStandaloneFunctions(content string, result *model.SignatureBundle, classBounds []classBound, allFunctions map[string]struct{}) {
	scan := func(re *regexp.Regexp) {
		for _, idx := range re.FindAllStringSubmatchIndex(content, -1) {
			insideClass := false
			for _, cb := range classBounds {
				if idx[0] >= cb.bounds.start && idx[0] <= cb.bounds.end {
					insideClass = true
					break
				}
			}
			if insideClass {
				continue
			}

			name := content[idx[2]:idx[3]]
			params := ""
			if idx[4] >= 0 {
				params = content[idx[4]:idx[5]]
			}
			returnType := ""
			if len(idx) > 6 && idx[6] >= 0 {
				returnType = content[idx[6]:idx[7]]
			}

			info := &model.FunctionRecord{}
			sig := "(" + collapseSpaces(params) + ")"
			if returnType != "" {
				sig += ": " + strings.TrimSpace(returnType)
			}
			if strings.Contains(content[idx[0]:idx[1]], "async") {
				sig = "async " + sig
			}
			info.Signature = sig

			if body, ok := balancedBody(content, idx[1], jsFuncBodyWindow); ok {
				info.Calls = JavaScriptCalls(body, allFunctions)
			}
			result.Functions[name] = info
		}
	}
	scan(jsFuncDeclRe)
	scan(jsArrowFuncRe)
}

// balancedBody finds the text between the next opening brace after from and
// its matching close brace, scanning at most window bytes. The opening brace
// must appear close to from, otherwise the match is assumed spurious.
func balancedBody(content string, from, window int) (string, bool) {
	bracePos := strings.Index(content[from:], "{")
	if bracePos < 0 || bracePos >= jsBraceSearchWindow {
		return "", false
	}
	start := from + bracePos + 1
	depth := 1
	limit := start + window
	if limit > len(content) {
		limit = len(content)
	}
	for i := start; i < limit; i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start:i], true
			}
		}
	}
	return "", false
}

// precedingBlockComment returns the first content line of the block comment
// nearest above the given prefix end, or "".
func precedingBlockComment(prefix string) string {
	matches := jsDocRe.FindAllStringSubmatch(prefix, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(matches[len(matches)-1][1])
}
