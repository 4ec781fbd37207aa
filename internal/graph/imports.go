package graph

import (
	"path"
	"regexp"
	"strings"
)

// importPatterns extracts raw import specifiers per language. These
// are intentionally simple line-oriented patterns rather than a full
// grammar walk: the file graph only needs to scope find_symbol's
// entry-point closure, not produce a precise dependency graph (that
// precision lives with the out-of-scope validators/sandboxes of spec
// §1's external collaborators).
var importPatterns = map[string][]*regexp.Regexp{
	"go":         {regexp.MustCompile(`"([^"]+)"`)},
	"typescript": {regexp.MustCompile(`from\s+['"]([^'"]+)['"]`), regexp.MustCompile(`require\(['"]([^'"]+)['"]\)`)},
	"javascript": {regexp.MustCompile(`from\s+['"]([^'"]+)['"]`), regexp.MustCompile(`require\(['"]([^'"]+)['"]\)`)},
	"python":     {regexp.MustCompile(`^\s*from\s+(\.*[\w.]+)\s+import`), regexp.MustCompile(`^\s*import\s+([\w.]+)`)},
	"rust":       {regexp.MustCompile(`^\s*use\s+([\w:]+)`)},
	"ruby":       {regexp.MustCompile(`require(?:_relative)?\s+['"]([^'"]+)['"]`)},
	"php":        {regexp.MustCompile(`(?:require|include)(?:_once)?\s*\(?['"]([^'"]+)['"]`)},
	"java":       {regexp.MustCompile(`^\s*import\s+([\w.]+)\s*;`)},
	"c":          {regexp.MustCompile(`#include\s*[<"]([^>"]+)[>"]`)},
	"cpp":        {regexp.MustCompile(`#include\s*[<"]([^>"]+)[>"]`)},
}

var importLineRE = regexp.MustCompile(`^\s*(import|from|use|require|#include)\b`)

// extractImportSpecs scans source line-by-line for import-like
// statements and returns the raw specifiers found, per language.
func extractImportSpecs(language string, source []byte) []string {
	patterns, ok := importPatterns[language]
	if !ok {
		return nil
	}

	var specs []string
	for _, line := range strings.Split(string(source), "\n") {
		if !importLineRE.MatchString(line) && !strings.Contains(line, "#include") {
			continue
		}
		for _, re := range patterns {
			if m := re.FindStringSubmatch(line); m != nil {
				specs = append(specs, m[1])
			}
		}
	}
	return specs
}

// resolveImportToFile best-effort maps a raw import specifier to one
// of the indexed relative paths, by matching the specifier's final
// path segment against each candidate's file stem. Specifiers that
// resolve to nothing indexed (stdlib packages, third-party modules)
// are simply not wired into the file graph.
func resolveImportToFile(spec string, candidates map[string]bool) string {
	spec = strings.Trim(spec, "./")
	segments := strings.FieldsFunc(spec, func(r rune) bool { return r == '/' || r == '.' || r == ':' })
	if len(segments) == 0 {
		return ""
	}
	last := segments[len(segments)-1]

	for relPath := range candidates {
		stem := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
		if stem == last {
			return relPath
		}
	}
	return ""
}
