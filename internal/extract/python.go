package extract

import (
	"regexp"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/model"
)

var (
	pyClassRe     = regexp.MustCompile(`^([ \t]*)class\s+(\w+)(?:\s*\((.*?)\))?:`)
	pyFuncRe      = regexp.MustCompile(`^([ \t]*)(async\s+)?def\s+(\w+)\s*\((.*?)\)(?:\s*->\s*([^:]+))?:`)
	pyFuncStartRe = regexp.MustCompile(`^([ \t]*)(async\s+)?def\s+(\w+)\s*\(`)
	pySigEndRe    = regexp.MustCompile(`\).*:`)
	pyPropertyRe  = regexp.MustCompile(`^([ \t]*)(\w+)\s*:\s*([^=\n]+)`)
	pyModConstRe  = regexp.MustCompile(`^([A-Z_][A-Z0-9_]*)\s*=\s*(.+)$`)
	pyModVarRe    = regexp.MustCompile(`^(\w+)\s*:\s*([^=]+)\s*=`)
	pyClsConstRe  = regexp.MustCompile(`^([ \t]+)([A-Z_][A-Z0-9_]*)\s*=\s*(.+)$`)
	pyImportRe    = regexp.MustCompile(`^(?:from\s+(\S+)\s+)?import\s+(.+)$`)
	pyTypeAliasRe = regexp.MustCompile(`^(\w+)\s*=\s*(?:Union|Optional|List|Dict|Tuple|Set|Type|Callable|Literal|TypeVar|NewType|TypedDict|Protocol)\[.+\]$`)
	pyDecoratorRe = regexp.MustCompile(`^([ \t]*)@(\w+)(?:\(.*\))?$`)
	pyDocstringRe = regexp.MustCompile(`^([ \t]*)(?:'''|""")(.+?)(?:'''|""")`)
	pyEnumValRe   = regexp.MustCompile(`^([ \t]+)([A-Z_][A-Z0-9_]*)\s*(?:=\s*(.+))?$`)
)

// Comparison dunders carry no architectural signal; only __init__ survives.
var pySkipDunder = map[string]struct{}{
	"__repr__": {}, "__str__": {}, "__hash__": {}, "__eq__": {}, "__ne__": {},
	"__lt__": {}, "__le__": {}, "__gt__": {}, "__ge__": {}, "__bool__": {},
}

// Python extracts a signature bundle from Python source using an
// indentation-driven line scanner. Only indent-0 classes become entities;
// nested classes are tracked solely so dedents can be detected, and their
// methods are dropped.
func Python(content string) *model.SignatureBundle {
	result := model.NewBundle()
	lines := strings.Split(content, "\n")

	// Up-front pass: every def name in the file, for call detection.
	allFunctions := make(map[string]struct{})
	for _, line := range lines {
		if m := pyFuncStartRe.FindStringSubmatch(line); m != nil {
			allFunctions[m[3]] = struct{}{}
		}
	}

	// Imports.
	for _, line := range lines {
		m := pyImportRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if m[1] != "" {
			// from X import Y
			result.Imports = append(result.Imports, m[1])
		} else {
			for _, item := range strings.Split(m[2], ",") {
				item = strings.TrimSpace(item)
				if idx := strings.Index(item, " as "); idx >= 0 {
					item = item[:idx]
				}
				if item != "" {
					result.Imports = append(result.Imports, strings.TrimSpace(item))
				}
			}
		}
	}

	var (
		currentClass       string
		currentClassIndent = -1
		pendingDecorators  []string
	)
	type scopeEntry struct {
		name   string
		indent int
	}
	var classStack []scopeEntry

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "#") || strings.HasPrefix(stripped, `"""`) || strings.HasPrefix(stripped, "'''") {
			continue
		}

		if m := pyDecoratorRe.FindStringSubmatch(line); m != nil {
			pendingDecorators = append(pendingDecorators, m[2])
			continue
		}

		if currentClass == "" {
			if m := pyTypeAliasRe.FindStringSubmatch(line); m != nil {
				_, value, _ := strings.Cut(line, "=")
				result.TypeAliases[m[1]] = strings.TrimSpace(value)
				continue
			}
			if m := pyModConstRe.FindStringSubmatch(line); m != nil {
				value, _, _ := strings.Cut(m[2], "#")
				result.Constants[m[1]] = InferValueKind(value)
				continue
			}
			if m := pyModVarRe.FindStringSubmatch(line); m != nil {
				name := m[1]
				if !strings.HasPrefix(name, "_") && !contains(result.Variables, name) {
					result.Variables = append(result.Variables, name)
				}
				continue
			}
		}

		if m := pyClassRe.FindStringSubmatch(line); m != nil {
			indentLevel := len(m[1])
			name, bases := m[2], m[3]

			for len(classStack) > 0 && indentLevel <= classStack[len(classStack)-1].indent {
				classStack = classStack[:len(classStack)-1]
			}

			if indentLevel == 0 {
				info := &model.ClassRecord{
					Methods:        make(map[string]*model.FunctionRecord),
					ClassConstants: make(map[string]model.ValueKind),
				}
				if len(pendingDecorators) > 0 {
					info.Decorators = append([]string(nil), pendingDecorators...)
					pendingDecorators = pendingDecorators[:0]
				}
				if bases != "" {
					for _, b := range strings.Split(bases, ",") {
						if b = strings.TrimSpace(b); b != "" {
							info.Inherits = append(info.Inherits, b)
						}
					}
					info.Kind = classifyBases(info.Inherits)
				}
				if i+1 < len(lines) {
					if dm := pyDocstringRe.FindStringSubmatch(lines[i+1]); dm != nil {
						info.Doc = strings.TrimSpace(dm[2])
					}
				}
				result.Classes[name] = info
				currentClass = name
				currentClassIndent = indentLevel
			}

			classStack = append(classStack, scopeEntry{name, indentLevel})
			continue
		}

		// Dedent back to (or past) the class header ends the class context.
		if currentClass != "" && stripped != "" && indentOf(line) <= currentClassIndent {
			if !strings.HasPrefix(stripped, "#") {
				currentClass = ""
				currentClassIndent = -1
			}
		}

		if currentClass != "" {
			cls := result.Classes[currentClass]
			if cls.Kind == model.KindEnum {
				if m := pyEnumValRe.FindStringSubmatch(line); m != nil && len(m[1]) > currentClassIndent {
					cls.Values = append(cls.Values, m[2])
					continue
				}
			}
			if m := pyClsConstRe.FindStringSubmatch(line); m != nil && len(m[1]) > currentClassIndent {
				value, _, _ := strings.Cut(m[3], "#")
				cls.ClassConstants[m[2]] = InferValueKind(value)
				continue
			}
		}

		if m := pyFuncStartRe.FindStringSubmatch(line); m != nil {
			indentLevel := len(m[1])

			// A signature may span several lines; concatenate until the
			// closing paren plus colon appears, then re-parse the whole.
			fullSig := strings.TrimRight(line, " \t\r")
			j := i
			for j < len(lines) && !pySigEndRe.MatchString(lines[j]) {
				j++
				if j < len(lines) {
					fullSig += " " + strings.TrimSpace(lines[j])
				}
			}
			if j >= len(lines) {
				continue
			}

			cm := pyFuncRe.FindStringSubmatch(fullSig)
			if cm == nil {
				continue
			}
			i = j
			isAsync, name, params, returnType := cm[2] != "", cm[3], cm[4], cm[5]
			params = collapseSpaces(params)

			if _, skip := pySkipDunder[name]; skip && name != "__init__" {
				continue
			}

			info := &model.FunctionRecord{}
			signature := "(" + params + ")"
			if returnType != "" {
				signature += " -> " + strings.TrimSpace(returnType)
			}
			if isAsync {
				signature = "async " + signature
			}
			info.Signature = signature

			if len(pendingDecorators) > 0 {
				info.Decorators = append([]string(nil), pendingDecorators...)
				if contains(pendingDecorators, "abstractmethod") && currentClass != "" {
					if cls := result.Classes[currentClass]; cls.Kind == model.KindPlain {
						cls.Kind = model.KindAbstract
					}
				}
				pendingDecorators = pendingDecorators[:0]
			}

			if i+1 < len(lines) {
				if dm := pyDocstringRe.FindStringSubmatch(lines[i+1]); dm != nil {
					info.Doc = strings.TrimSpace(dm[2])
				}
			}

			// Body: every following line indented deeper than the header.
			var body []string
			for k := i + 1; k < len(lines); k++ {
				bl := lines[k]
				if strings.TrimSpace(bl) == "" {
					body = append(body, bl)
					continue
				}
				if indentOf(bl) <= indentLevel {
					break
				}
				body = append(body, bl)
			}
			if len(body) > 0 {
				info.Calls = PythonCalls(strings.Join(body, "\n"), allFunctions)
			}

			// Methods of nested, non-top-level classes have no recorded
			// owner and are dropped.
			if currentClass != "" && indentLevel > currentClassIndent {
				result.Classes[currentClass].Methods[name] = info
			} else if indentLevel == 0 {
				result.Functions[name] = info
			}
		}

		if currentClass != "" {
			if m := pyPropertyRe.FindStringSubmatch(line); m != nil {
				if len(m[1]) > currentClassIndent && !strings.HasPrefix(m[2], "_") {
					cls := result.Classes[currentClass]
					if !contains(cls.Properties, m[2]) {
						cls.Properties = append(cls.Properties, m[2])
					}
				}
			}
		}
	}

	relocateEnums(result)
	return result
}

func classifyBases(bases []string) model.ClassKind {
	for _, b := range bases {
		if strings.Contains(strings.ToLower(b), "enum") {
			return model.KindEnum
		}
	}
	for _, b := range bases {
		lower := strings.ToLower(b)
		if strings.Contains(lower, "exception") || strings.Contains(lower, "error") {
			return model.KindException
		}
	}
	for _, b := range bases {
		lower := strings.ToLower(b)
		if strings.Contains(lower, "abc") || strings.Contains(lower, "protocol") {
			return model.KindAbstract
		}
	}
	return model.KindPlain
}

// relocateEnums moves enum-classified classes into the top-level Enums map,
// keeping only their values and doc.
func relocateEnums(b *model.SignatureBundle) {
	for name, cls := range b.Classes {
		if cls.Kind != model.KindEnum {
			continue
		}
		b.Enums[name] = &model.EnumRecord{Values: cls.Values, Doc: cls.Doc}
		delete(b.Classes, name)
	}
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var spacesRe = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}
