// Package ignore implements the ignore-matching engine: absolute rules
// from info/exclude and the global excludes file, plus per-directory
// .gitignore rules read through the index, combined with last-match-wins
// semantics.
package ignore

import (
	"bufio"
	"bytes"
	"path"
	"strings"

	"github.com/bokuyemskyy/mgit/ginternals/index"
	"github.com/bokuyemskyy/mgit/ginternals/object"
	"github.com/bokuyemskyy/mgit/githash"
)

// Rule is a single parsed ignore line: a glob pattern and the outcome a
// match against it produces. Ignores is true for a plain or escaped
// pattern (match ⇒ path is ignored) and false for a "!"-negated one
// (match ⇒ path is explicitly kept).
type Rule struct {
	Pattern string
	Ignores bool
}

// parseLine parses a single raw .gitignore/exclude line. Blank lines and
// comments return ok=false.
func parseLine(raw string) (r Rule, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return Rule{}, false
	}

	switch {
	case strings.HasPrefix(line, "!"):
		return Rule{Pattern: line[1:], Ignores: false}, true
	case strings.HasPrefix(line, `\`):
		return Rule{Pattern: line[1:], Ignores: true}, true
	default:
		return Rule{Pattern: line, Ignores: true}, true
	}
}

// parseRules splits raw ignore-file content into its rules, in file order
func parseRules(content []byte) []Rule {
	var rules []Rule
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		if r, ok := parseLine(sc.Text()); ok {
			rules = append(rules, r)
		}
	}
	return rules
}

// Matcher aggregates the ignore rules in effect for a repository: a flat
// list of absolute rules (info/exclude + the global excludes file) and a
// per-directory list of scoped rules sourced from tracked .gitignore
// blobs.
type Matcher struct {
	absolute []Rule
	scoped   map[string][]Rule
}

// New builds a Matcher from the repository's absolute exclude sources
// (info/exclude content, then the global excludes file content, in that
// combination order) and its staged index, reading every tracked
// .gitignore blob through getObject.
func New(infoExclude, globalExcludes []byte, idx *index.Index, getObject func(oid githash.Oid) (*object.Object, error)) (*Matcher, error) {
	m := &Matcher{
		absolute: append(parseRules(infoExclude), parseRules(globalExcludes)...),
		scoped:   map[string][]Rule{},
	}

	for _, e := range idx.Entries {
		base := path.Base(e.Name)
		if base != ".gitignore" {
			continue
		}
		o, err := getObject(e.Oid)
		if err != nil {
			return nil, err
		}
		blob := o.AsBlob()
		dir := path.Dir(e.Name)
		if dir == "." {
			dir = ""
		}
		m.scoped[dir] = parseRules(blob.Bytes())
	}

	return m, nil
}

// Match returns whether the repo-relative path p is ignored. Parent
// directories are walked from deepest to root; at each directory with
// scoped rules, a last-match-wins scan decides the outcome only if one of
// its rules matches, otherwise the walk goes on upward. If no scoped rule
// matches at any level, the absolute rules decide, again last-match-wins.
// The default is false.
func (m *Matcher) Match(p string) bool {
	p = path.Clean(p)
	if p == "." {
		return false
	}

	for dir := path.Dir(p); ; dir = path.Dir(dir) {
		if dir == "." {
			dir = ""
		}
		if rules, ok := m.scoped[dir]; ok {
			if ignored, matched := lastMatch(rules, p); matched {
				return ignored
			}
		}
		if dir == "" {
			break
		}
	}

	ignored, _ := lastMatch(m.absolute, p)
	return ignored
}

// lastMatch scans rules in order, keeping the outcome of the last one
// that matches p (by basename or full repo-relative path)
func lastMatch(rules []Rule, p string) (ignored bool, matched bool) {
	base := path.Base(p)
	for _, r := range rules {
		if globMatch(r.Pattern, p) || globMatch(r.Pattern, base) {
			ignored = r.Ignores
			matched = true
		}
	}
	return ignored, matched
}

// globMatch reports whether name matches pattern using the canonical
// glob alphabet (*, ?, [...]): path.Match's rules, with the one
// difference that a pattern containing no "/" is also tried against
// just the path's basename by the caller.
func globMatch(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	if err != nil {
		return false
	}
	return ok
}
