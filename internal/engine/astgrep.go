package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"os/exec"
	"regexp"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/model"
)

// sgMatch is one line of ast-grep --json=stream output. Only the fields the
// selector needs are decoded.
type sgMatch struct {
	Text  string `json:"text"`
	Range struct {
		Start struct {
			Line int `json:"line"`
		} `json:"start"`
		End struct {
			Line int `json:"line"`
		} `json:"end"`
	} `json:"range"`
}

func (s *Selector) sgCLI() string {
	for _, name := range []string{"sg", "ast-grep"} {
		if path, err := s.lookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// runAstGrep invokes the structural-match tool for one pattern and decodes
// its streamed matches. Any failure (missing binary, timeout, non-zero exit,
// undecodable output) yields nil.
func (s *Selector) runAstGrep(cli, pattern, lang, path, selector string) []sgMatch {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	args := []string{"run", "-p", pattern, "-l", lang}
	if selector != "" {
		args = append(args, "--selector", selector)
	}
	args = append(args, "--json=stream", path)

	out, err := exec.CommandContext(ctx, cli, args...).Output()
	if err != nil {
		return nil
	}

	var matches []sgMatch
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var m sgMatch
		if json.Unmarshal([]byte(line), &m) == nil {
			matches = append(matches, m)
		}
	}
	return matches
}

// withAstGrep extracts functions and classes for one file via the external
// structural-match tool, or returns nil when the tool is unavailable.
func (s *Selector) withAstGrep(path, ext, lang string) *model.SignatureBundle {
	cli := s.sgCLI()
	if cli == "" {
		return nil
	}
	b := model.NewBundle()

	switch ext {
	case ".py":
		for _, m := range s.runAstGrep(cli, "def $FN($$$ARGS): $$$", lang, path, "") {
			addFunc(b, ext, m.Text)
		}
		matches := s.runAstGrep(cli, "class $C($$BASES): $$$", lang, path, "")
		matches = append(matches, s.runAstGrep(cli, "class $C: $$$", lang, path, "")...)
		for _, m := range matches {
			addClass(b, ext, m.Text)
		}
	case ".js", ".jsx", ".ts", ".tsx":
		patterns := []string{
			"function $FN($$$ARGS) { $$$ }",
			"function $FN($$$ARGS): $RET { $$$ }",
			"const $FN = ($$$ARGS) => { $$$ }",
			"const $FN = ($$$ARGS): $RET => { $$$ }",
		}
		for _, p := range patterns {
			for _, m := range s.runAstGrep(cli, p, lang, path, "") {
				addFunc(b, ext, m.Text)
			}
		}
		for _, m := range s.runAstGrep(cli, "class $C { $$$ }", lang, path, "") {
			addClass(b, ext, m.Text)
		}
	case ".go":
		patterns := []string{
			"func $FN($$$ARGS) { $$$ }",
			"func $FN($$$ARGS) $RET { $$$ }",
			"func ($REC $T) $FN($$$ARGS) { $$$ }",
			"func ($REC $T) $FN($$$ARGS) $RET { $$$ }",
		}
		for _, p := range patterns {
			for _, m := range s.runAstGrep(cli, p, lang, path, "") {
				addFunc(b, ext, m.Text)
			}
		}
	case ".rs":
		patterns := []string{
			"fn $FN($$$ARGS) { $$$ }",
			"fn $FN($$$ARGS) -> $RET { $$$ }",
			"impl $T { fn $FN($$$ARGS) { $$$ } }",
			"impl $T { fn $FN($$$ARGS) -> $RET { $$$ } }",
		}
		for _, p := range patterns {
			for _, m := range s.runAstGrep(cli, p, lang, path, "") {
				addFunc(b, ext, m.Text)
			}
		}
	case ".java":
		s.classesWithMethods(cli, b, ext, lang, path, []string{"class $C { $$$ }"}, "method_declaration")
	case ".cs":
		s.classesWithMethods(cli, b, ext, lang, path, []string{"class $C { $$$ }"}, "method_declaration")
	case ".c", ".h":
		for _, m := range s.runAstGrep(cli, "$_RET $FN($$$ARGS) { $$$ }", lang, path, "") {
			addFunc(b, ext, m.Text)
		}
	case ".cc", ".cpp", ".cxx", ".hpp":
		s.classesWithMethods(cli, b, ext, lang, path, []string{"class $C { $$$ }", "struct $C { $$$ }"}, "function_definition")
	default:
		return nil
	}

	return b
}

// classesWithMethods handles the brace-block languages where methods are
// attributed to their class by line range.
func (s *Selector) classesWithMethods(cli string, b *model.SignatureBundle, ext, lang, path string, classPatterns []string, methodSelector string) {
	type classRange struct {
		name       string
		start, end int
	}
	var ranges []classRange

	for _, p := range classPatterns {
		for _, m := range s.runAstGrep(cli, p, lang, path, "") {
			name, _, ok := parseNameSig(ext, "class", m.Text)
			if !ok {
				continue
			}
			ranges = append(ranges, classRange{name, m.Range.Start.Line, m.Range.End.Line})
			ensureClass(b, name)
		}
	}

	var methods []sgMatch
	for _, p := range classPatterns {
		methods = append(methods, s.runAstGrep(cli, p, lang, path, methodSelector)...)
	}
	for _, m := range methods {
		name, sig, ok := parseNameSig(ext, "function", m.Text)
		if !ok {
			continue
		}
		owner := ""
		for _, r := range ranges {
			if r.start <= m.Range.Start.Line && m.Range.Start.Line <= r.end {
				owner = r.name
			}
		}
		if owner != "" {
			cls := ensureClass(b, owner)
			if _, exists := cls.Methods[name]; !exists {
				cls.Methods[name] = &model.FunctionRecord{Signature: sig}
			}
		} else if _, exists := b.Functions[name]; !exists {
			b.Functions[name] = &model.FunctionRecord{Signature: sig}
		}
	}
}

func addFunc(b *model.SignatureBundle, ext, text string) {
	name, sig, ok := parseNameSig(ext, "function", text)
	if !ok {
		return
	}
	if _, exists := b.Functions[name]; !exists {
		b.Functions[name] = &model.FunctionRecord{Signature: sig}
	}
}

func addClass(b *model.SignatureBundle, ext, text string) {
	name, _, ok := parseNameSig(ext, "class", text)
	if !ok {
		return
	}
	ensureClass(b, name)
}

func ensureClass(b *model.SignatureBundle, name string) *model.ClassRecord {
	if cls, ok := b.Classes[name]; ok {
		return cls
	}
	cls := &model.ClassRecord{
		Methods:        make(map[string]*model.FunctionRecord),
		ClassConstants: make(map[string]model.ValueKind),
	}
	b.Classes[name] = cls
	return cls
}

var (
	sgPyFuncRe    = regexp.MustCompile(`^def\s+([A-Za-z_]\w*)\s*\((.*?)\)\s*:`)
	sgPyClassRe   = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)(?:\s*\(([^)]*)\))?\s*:`)
	sgJSFuncRe    = regexp.MustCompile(`^(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][\w$]*)\s*\(([^)]*)\)`)
	sgJSArrowRe   = regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?\(([^)]*)\)\s*=>`)
	sgJSClassRe   = regexp.MustCompile(`^(?:export\s+)?class\s+([A-Za-z_$][\w$]*)`)
	sgGoFuncRe    = regexp.MustCompile(`^func\s+(?:\([^)]+\)\s*)?([A-Za-z_]\w*)\s*\(([^)]*)\)\s*([^{]*)\{`)
	sgRustFuncRe  = regexp.MustCompile(`^fn\s+([A-Za-z_]\w*)\s*\(([^)]*)\)\s*(?:->\s*([^{]+))?\s*\{`)
	sgBlockFuncRe = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*\(([^)]*)\)\s*\{`)
	sgBlockClsRe  = regexp.MustCompile(`\bclass\s+([A-Za-z_$][\w$]*)`)
	sgCFuncRe     = regexp.MustCompile(`([A-Za-z_~][\w$]*)\s*\(([^)]*)\)\s*\{`)
	sgCppClsRe    = regexp.MustCompile(`\b(?:class|struct)\s+([A-Za-z_][\w$]*)`)
)

// parseNameSig recovers a symbol name and signature from matched text. The
// text is whatever the structural tool reports, so these are search-style
// regexes with generous tolerances.
func parseNameSig(ext, kind, text string) (name, sig string, ok bool) {
	t := strings.TrimSpace(text)
	switch ext {
	case ".py":
		if kind == "function" {
			if m := sgPyFuncRe.FindStringSubmatch(t); m != nil {
				return m[1], "(" + m[2] + ")", true
			}
		} else if m := sgPyClassRe.FindStringSubmatch(t); m != nil {
			if m[2] != "" {
				return m[1], "(" + m[2] + ")", true
			}
			return m[1], "", true
		}
	case ".js", ".jsx", ".ts", ".tsx":
		if kind == "function" {
			if m := sgJSFuncRe.FindStringSubmatch(t); m != nil {
				return m[1], "(" + m[2] + ")", true
			}
			if m := sgJSArrowRe.FindStringSubmatch(t); m != nil {
				return m[1], "(" + m[2] + ")", true
			}
		} else if m := sgJSClassRe.FindStringSubmatch(t); m != nil {
			return m[1], "", true
		}
	case ".go":
		if kind == "function" {
			if m := sgGoFuncRe.FindStringSubmatch(t); m != nil {
				sig := "(" + m[2] + ")"
				if ret := strings.TrimSpace(m[3]); ret != "" {
					sig += " -> " + ret
				}
				return m[1], sig, true
			}
		}
	case ".rs":
		if kind == "function" {
			if m := sgRustFuncRe.FindStringSubmatch(t); m != nil {
				sig := "(" + m[2] + ")"
				if ret := strings.TrimSpace(m[3]); ret != "" {
					sig += " -> " + ret
				}
				return m[1], sig, true
			}
		}
	case ".java", ".cs":
		if kind == "function" {
			if m := sgBlockFuncRe.FindStringSubmatch(t); m != nil {
				return m[1], "(" + m[2] + ")", true
			}
		} else if m := sgBlockClsRe.FindStringSubmatch(t); m != nil {
			return m[1], "", true
		}
	case ".c", ".h", ".cc", ".cpp", ".cxx", ".hpp":
		if kind == "function" {
			if m := sgCFuncRe.FindStringSubmatch(t); m != nil {
				return m[1], "(" + m[2] + ")", true
			}
		} else if m := sgCppClsRe.FindStringSubmatch(t); m != nil {
			return m[1], "", true
		}
	}
	return "", "", false
}
