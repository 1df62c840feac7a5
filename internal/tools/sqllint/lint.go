package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	sqlKeyword    = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)
	markerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// query is one SQL string constant found in a source file.
type query struct {
	file   string
	line   int
	name   string
	marker string
}

func (q query) pos() string { return fmt.Sprintf("%s:%d %s", q.file, q.line, q.name) }

// collect walks target (a file or directory) and returns every constant whose
// value looks like SQL. Test files are skipped.
func collect(target string) ([]query, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return parseFile(target)
	}
	var out []query
	err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != target && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		qs, err := parseFile(path)
		if err != nil {
			return err
		}
		out = append(out, qs...)
		return nil
	})
	return out, err
}

func parseFile(path string) ([]query, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}
	var out []query
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		for _, spec := range gd.Specs {
			vs := spec.(*ast.ValueSpec)
			for i, value := range vs.Values {
				bl, ok := value.(*ast.BasicLit)
				if !ok || bl.Kind != token.STRING {
					continue
				}
				raw, err := strconv.Unquote(bl.Value)
				if err != nil || !sqlKeyword.MatchString(raw) {
					continue
				}
				name := "_"
				if i < len(vs.Names) {
					name = vs.Names[i].Name
				}
				out = append(out, query{
					file:   path,
					line:   fset.Position(bl.Pos()).Line,
					name:   name,
					marker: firstLine(raw),
				})
			}
		}
	}
	return out, nil
}

// check reports queries with a missing or malformed marker and markers shared
// by more than one query.
func check(queries []query) []string {
	var problems []string
	seen := make(map[string][]query)
	for _, q := range queries {
		if !markerPattern.MatchString(q.marker) {
			problems = append(problems, q.pos()+": missing or invalid --sql <uuid> marker")
			continue
		}
		seen[q.marker] = append(seen[q.marker], q)
	}
	markers := make([]string, 0, len(seen))
	for m := range seen {
		markers = append(markers, m)
	}
	sort.Strings(markers)
	for _, m := range markers {
		qs := seen[m]
		if len(qs) < 2 {
			continue
		}
		for _, q := range qs[1:] {
			problems = append(problems, fmt.Sprintf("%s: marker reused from %s", q.pos(), qs[0].name))
		}
	}
	return problems
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}
