package dsl

import (
	"bufio"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Summary is the subset of an index file the refresh policy needs: the
// header, the project metadata line, the indexed path set, and which
// documents carry MD lines. Function and class lines are skipped.
type Summary struct {
	Version   string
	Root      string
	IndexedAt time.Time
	FileCount int
	DirCount  int
	Markdown  int
	TreeLines int
	Paths     map[string]struct{}
	Docs      map[string]struct{}
}

var ErrMalformed = errors.New("dsl: malformed index")

// ReadSummary parses the skeleton of a rendered index. A missing or
// unrecognizable header line is an error; individually malformed body lines
// are skipped.
func ReadSummary(content string) (*Summary, error) {
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, ErrMalformed
	}
	header := sc.Text()
	if !strings.HasPrefix(header, "! PROJECT_INDEX DSL v") {
		return nil, ErrMalformed
	}

	s := &Summary{
		Version: strings.TrimPrefix(header, "! PROJECT_INDEX DSL v"),
		Paths:   make(map[string]struct{}),
		Docs:    make(map[string]struct{}),
	}

	for sc.Scan() {
		line := sc.Text()
		tag, rest, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		switch tag {
		case "P":
			s.parseMeta(rest)
		case "T":
			s.TreeLines++
		case "F":
			if path, _, ok := strings.Cut(rest, " "); ok {
				s.Paths[path] = struct{}{}
			}
		case "MD":
			if path, _, ok := strings.Cut(rest, " "); ok {
				s.Docs[path] = struct{}{}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if s.IndexedAt.IsZero() {
		return nil, ErrMalformed
	}
	return s, nil
}

func (s *Summary) parseMeta(rest string) {
	for _, field := range strings.Fields(rest) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "root":
			s.Root = value
		case "indexed_at":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				s.IndexedAt = t
			}
		case "files":
			s.FileCount, _ = strconv.Atoi(value)
		case "dirs":
			s.DirCount, _ = strconv.Atoi(value)
		case "md":
			s.Markdown, _ = strconv.Atoi(value)
		}
	}
}
