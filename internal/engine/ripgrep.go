package engine

import (
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/roderik/claude-code-project-index/internal/model"
)

var (
	solContractRe = regexp.MustCompile(`(?:contract|interface|library)\s+([A-Za-z_]\w*)`)
	solFuncRe     = regexp.MustCompile(`(?:function|constructor)\s*([A-Za-z_]\w*)?\s*\(([^)]*)\)\s*(?:[a-z\s]*)?(?:returns\s*\(([^)]*)\))?`)
)

func (s *Selector) rgCLI() string {
	for _, name := range []string{"rg", "ripgrep"} {
		if path, err := s.lookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func (s *Selector) runRipgrep(cli, pattern, path string) []string {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, cli, "-nU", "-e", pattern, path).Output()
	if err != nil {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// solidityWithRipgrep extracts Solidity contracts and functions with the
// line-match engine. Solidity has no structural engine, so this is a raw
// line scan: contracts/interfaces/libraries become classes, function and
// constructor declarations become functions.
func (s *Selector) solidityWithRipgrep(path string) *model.SignatureBundle {
	cli := s.rgCLI()
	if cli == "" {
		return nil
	}
	b := model.NewBundle()

	for _, line := range s.runRipgrep(cli, `^\s*(?:contract|interface|library)\s+([A-Za-z_]\w*)`, path) {
		if m := solContractRe.FindStringSubmatch(line); m != nil {
			ensureClass(b, m[1])
		}
	}
	for _, line := range s.runRipgrep(cli, `^\s*(?:function|constructor)\s*[A-Za-z_]*\s*\(`, path) {
		m := solFuncRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		if name == "" {
			name = "constructor"
		}
		sig := "(" + m[2] + ")"
		if m[3] != "" {
			sig += " returns (" + m[3] + ")"
		}
		if _, exists := b.Functions[name]; !exists {
			b.Functions[name] = &model.FunctionRecord{Signature: sig}
		}
	}
	return b
}
