// Package model defines the core data structures for the project index.
package model

import "time"

// ValueKind classifies a constant's initializer by syntactic shape.
type ValueKind string

const (
	KindCollection ValueKind = "collection"
	KindString     ValueKind = "str"
	KindNumber     ValueKind = "number"
	KindValue      ValueKind = "value"
)

// ClassKind classifies a class by what it inherits from.
type ClassKind string

const (
	KindPlain     ClassKind = ""
	KindEnum      ClassKind = "enum"
	KindException ClassKind = "exception"
	KindAbstract  ClassKind = "abstract"
)

// FunctionRecord describes one extracted function or method. Signature is
// always present; everything else is optional. A record whose optional fields
// are all empty serializes as a bare signature string, but it is still this
// one type; there is no separate "string form".
type FunctionRecord struct {
	Signature  string
	Doc        string
	Decorators []string
	Calls      []string // sorted, deduplicated callee names
	CalledBy   []string // populated during the graph pass
}

// Bare reports whether the record carries nothing beyond its signature.
func (f *FunctionRecord) Bare() bool {
	return f.Doc == "" && len(f.Decorators) == 0 && len(f.Calls) == 0 && len(f.CalledBy) == 0
}

// ClassRecord describes one extracted class.
type ClassRecord struct {
	Methods        map[string]*FunctionRecord
	Inherits       []string
	Kind           ClassKind
	ClassConstants map[string]ValueKind
	Properties     []string
	Decorators     []string
	Doc            string

	// Values collects enum members while the class is still in Classes;
	// enum-kind classes are relocated into SignatureBundle.Enums afterwards.
	Values []string
}

// EnumRecord is the relocated form of an enum-classified class, and the
// native form for TypeScript enums.
type EnumRecord struct {
	Values []string
	Doc    string
}

// InterfaceRecord describes a TypeScript interface.
type InterfaceRecord struct {
	Extends []string
	Doc     string
}

// SignatureBundle is the structured extraction result for one source file.
// It is built once per file and never merged with other bundles except by the
// graph pass, which only fills in CalledBy sets.
type SignatureBundle struct {
	Imports     []string
	Functions   map[string]*FunctionRecord
	Classes     map[string]*ClassRecord
	Constants   map[string]ValueKind
	Variables   []string
	TypeAliases map[string]string
	Enums       map[string]*EnumRecord
	Interfaces  map[string]*InterfaceRecord

	// Shell-specific: sourced files and exported variables.
	Sources []string
	Exports map[string]ValueKind
}

// NewBundle returns a bundle with all maps allocated.
func NewBundle() *SignatureBundle {
	return &SignatureBundle{
		Functions:   make(map[string]*FunctionRecord),
		Classes:     make(map[string]*ClassRecord),
		Constants:   make(map[string]ValueKind),
		TypeAliases: make(map[string]string),
		Enums:       make(map[string]*EnumRecord),
		Interfaces:  make(map[string]*InterfaceRecord),
		Exports:     make(map[string]ValueKind),
	}
}

// Parsed reports whether extraction produced any functions or classes.
// Files where it didn't are recorded as listed-only.
func (b *SignatureBundle) Parsed() bool {
	if b == nil {
		return false
	}
	return len(b.Functions) > 0 || len(b.Classes) > 0
}

// FileEntry is one indexed file.
type FileEntry struct {
	Language string
	Purpose  string
	Parsed   bool
	Bundle   *SignatureBundle // nil when the file is listed only
}

// DocStructure holds the scanned outline of a markdown file.
type DocStructure struct {
	Sections []string
	Hints    []string
}

// Stats aggregates per-run counters.
type Stats struct {
	TotalFiles    int
	TotalDirs     int
	MarkdownFiles int
	FullyParsed   map[string]int
	ListedOnly    map[string]int
}

// Index is the complete result of one build. It is created fresh per run,
// mutated only during the two build passes, and discarded after serialization.
type Index struct {
	Root        string
	IndexedAt   time.Time
	Tree        []string
	DirPurposes map[string]string
	Docs        map[string]*DocStructure
	Files       map[string]*FileEntry
	Stats       Stats

	// CallGraph maps "path::name" or "path::Class.method" to the unqualified
	// names that body calls. The inverse index lives on the records themselves
	// (FunctionRecord.CalledBy) and is keyed by plain name, so symbols sharing
	// a name across files are indistinguishable there.
	CallGraph map[string][]string

	// Deps maps a file path to resolved sibling paths (relative imports that
	// exist in the index) and raw module strings (external imports).
	Deps map[string][]string
}

// NewIndex returns an index with all maps allocated.
func NewIndex(root string) *Index {
	return &Index{
		Root:        root,
		IndexedAt:   time.Now(),
		DirPurposes: make(map[string]string),
		Docs:        make(map[string]*DocStructure),
		Files:       make(map[string]*FileEntry),
		Stats: Stats{
			FullyParsed: make(map[string]int),
			ListedOnly:  make(map[string]int),
		},
		CallGraph: make(map[string][]string),
		Deps:      make(map[string][]string),
	}
}
