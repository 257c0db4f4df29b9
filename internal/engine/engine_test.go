package engine

import (
	"errors"
	"testing"
	"time"
)

// noTools simulates a host with neither external engine installed, forcing
// the built-in and in-process paths.
func noTools(timeout time.Duration) *Selector {
	return &Selector{
		Timeout:  timeout,
		lookPath: func(string) (string, error) { return "", errors.New("not found") },
	}
}

func TestExtractBuiltinPython(t *testing.T) {
	t.Parallel()

	s := noTools(time.Second)
	b := s.Extract("/proj/app.py", []byte("def run(argv):\n    return 0\n"))

	if !b.Parsed() {
		t.Fatal("python source not parsed")
	}
	if _, ok := b.Functions["run"]; !ok {
		t.Errorf("functions = %v", b.Functions)
	}
}

func TestExtractBuiltinJavaScript(t *testing.T) {
	t.Parallel()

	s := noTools(time.Second)
	b := s.Extract("/proj/app.ts", []byte("function boot(port) {\n  return port;\n}\n"))

	if _, ok := b.Functions["boot"]; !ok {
		t.Errorf("functions = %v", b.Functions)
	}
}

func TestExtractBuiltinShell(t *testing.T) {
	t.Parallel()

	s := noTools(time.Second)
	b := s.Extract("/proj/run.sh", []byte("deploy() {\n  echo $1\n}\n"))

	if got := b.Functions["deploy"]; got == nil || got.Signature != "($1)" {
		t.Errorf("functions = %v", b.Functions)
	}
}

func TestExtractGoTreeSitter(t *testing.T) {
	t.Parallel()

	src := `package server

import "net"

func Listen(addr string) error {
	return nil
}

type Server struct{}

func (s *Server) Close() error {
	return nil
}
`
	s := noTools(time.Second)
	b := s.Extract("/proj/server.go", []byte(src))

	if !b.Parsed() {
		t.Fatal("go source not parsed")
	}
	fn := b.Functions["Listen"]
	if fn == nil || fn.Signature != "(addr string) -> error" {
		t.Errorf("Listen = %+v", fn)
	}
	cls := b.Classes["Server"]
	if cls == nil {
		t.Fatalf("classes = %v", b.Classes)
	}
	if m := cls.Methods["Close"]; m == nil || m.Signature != "() -> error" {
		t.Errorf("Close = %+v", cls.Methods)
	}
	if len(b.Imports) != 1 || b.Imports[0] != "net" {
		t.Errorf("imports = %v", b.Imports)
	}
}

func TestExtractNoEngine(t *testing.T) {
	t.Parallel()

	s := noTools(time.Second)

	// Solidity needs the line-match tool; without it the file is listed only.
	if b := s.Extract("/proj/token.sol", []byte("contract Token {}\n")); b == nil || b.Parsed() {
		t.Errorf("solidity without ripgrep = %+v", b)
	}
	// Unhandled extensions always come back empty, never nil.
	if b := s.Extract("/proj/query.sql", []byte("SELECT 1;\n")); b == nil || b.Parsed() {
		t.Errorf("sql = %+v", b)
	}
}

func TestParseable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want bool
	}{
		{".py", true},
		{".go", true},
		{".sol", true},
		{".bash", true},
		{".RS", true},
		{".json", false},
		{".css", false},
	}
	for _, tt := range tests {
		if got := Parseable(tt.ext); got != tt.want {
			t.Errorf("Parseable(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestParseNameSig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext, kind, text string
		name, sig       string
		ok              bool
	}{
		{".py", "function", "def add(a, b):\n    return a + b", "add", "(a, b)", true},
		{".py", "class", "class Parser(Base):\n    pass", "Parser", "(Base)", true},
		{".js", "function", "export async function load(url) {", "load", "(url)", true},
		{".js", "function", "const go = async (x) => {", "go", "(x)", true},
		{".ts", "class", "export class Store {", "Store", "", true},
		{".go", "function", "func Dial(addr string) error {", "Dial", "(addr string) -> error", true},
		{".rs", "function", "fn parse(input: &str) -> Token {", "parse", "(input: &str) -> Token", true},
		{".py", "function", "not a function", "", "", false},
	}
	for _, tt := range tests {
		name, sig, ok := parseNameSig(tt.ext, tt.kind, tt.text)
		if name != tt.name || sig != tt.sig || ok != tt.ok {
			t.Errorf("parseNameSig(%q, %q, %q) = %q, %q, %v", tt.ext, tt.kind, tt.text, name, sig, ok)
		}
	}
}
