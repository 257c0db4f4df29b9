package engine

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/roderik/claude-code-project-index/internal/model"
)

var goWhitespaceRe = regexp.MustCompile(`\s+`)

// goStructural parses Go source in-process with tree-sitter when the external
// structural tool is absent. Top-level functions, methods (attributed to their
// receiver type), type declarations, and imports are recorded; bodies are not
// scanned for calls.
func (s *Selector) goStructural(content []byte) *model.SignatureBundle {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil
	}
	defer tree.Close()

	b := model.NewBundle()
	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(i)
		switch node.Type() {
		case "function_declaration":
			name, sig := goSignature(node, content, false)
			if name != "" {
				b.Functions[name] = &model.FunctionRecord{Signature: sig}
			}
		case "method_declaration":
			name, sig := goSignature(node, content, true)
			if name == "" {
				continue
			}
			if recv := goReceiverType(node, content); recv != "" {
				cls := ensureClass(b, recv)
				cls.Methods[name] = &model.FunctionRecord{Signature: sig}
			} else {
				b.Functions[name] = &model.FunctionRecord{Signature: sig}
			}
		case "type_declaration":
			for j := 0; j < int(node.ChildCount()); j++ {
				spec := node.Child(j)
				if spec.Type() != "type_spec" {
					continue
				}
				for k := 0; k < int(spec.ChildCount()); k++ {
					if spec.Child(k).Type() == "type_identifier" {
						ensureClass(b, goNodeText(spec.Child(k), content))
						break
					}
				}
			}
		case "import_declaration":
			goCollectImports(node, content, b)
		}
	}
	return b
}

// goSignature builds "(params) -> result" from a function or method node.
func goSignature(node *sitter.Node, source []byte, isMethod bool) (string, string) {
	var name, params, result string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier", "field_identifier":
			name = goNodeText(child, source)
		case "parameter_list":
			// A method's first parameter_list is the receiver.
			if isMethod && params == "" && goIsReceiverList(node, child) {
				continue
			}
			params = goCollapse(goNodeText(child, source))
		case "simple_type", "pointer_type", "qualified_type",
			"slice_type", "map_type", "channel_type",
			"interface_type", "struct_type", "function_type",
			"type_identifier":
			result = goCollapse(goNodeText(child, source))
		}
	}
	sig := params
	if sig == "" {
		sig = "()"
	}
	if result != "" {
		sig += " -> " + result
	}
	return name, sig
}

// goReceiverType extracts the receiver type name from a method_declaration,
// unwrapping a pointer receiver.
func goReceiverType(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "parameter_list" || !goIsReceiverList(node, child) {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			param := child.Child(j)
			if param.Type() != "parameter_declaration" {
				continue
			}
			for k := 0; k < int(param.ChildCount()); k++ {
				inner := param.Child(k)
				switch inner.Type() {
				case "type_identifier":
					return goNodeText(inner, source)
				case "pointer_type":
					for l := 0; l < int(inner.ChildCount()); l++ {
						if inner.Child(l).Type() == "type_identifier" {
							return goNodeText(inner.Child(l), source)
						}
					}
				}
			}
		}
	}
	return ""
}

// goIsReceiverList reports whether a parameter_list appears before the method
// name, which marks it as the receiver.
func goIsReceiverList(parent, paramList *sitter.Node) bool {
	if parent.Type() != "method_declaration" {
		return false
	}
	foundList := false
	for i := 0; i < int(parent.ChildCount()); i++ {
		child := parent.Child(i)
		if child == paramList {
			foundList = true
			continue
		}
		if foundList && child.Type() == "field_identifier" {
			return true
		}
	}
	return false
}

func goCollectImports(node *sitter.Node, source []byte, b *model.SignatureBundle) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "interpreted_string_literal" {
			path := strings.Trim(goNodeText(n, source), `"`)
			if path != "" {
				b.Imports = append(b.Imports, path)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
}

func goNodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func goCollapse(s string) string {
	return strings.TrimSpace(goWhitespaceRe.ReplaceAllString(s, " "))
}
