// Package discovery walks a project tree and decides which files are
// eligible for indexing, per spec §4.1. Grounded on the teacher's
// internal/indexer/discovery.go (gobwas/glob-compiled ignore patterns,
// filepath.Walk traversal), extended with the spec's language-set
// filter, binary-file sniffing and symlink-escape exclusion.
package discovery

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gobwas/glob"
)

// languageByExt is the closed set of supported languages, keyed by file
// extension (spec §2's "language: tag drawn from a closed set").
var languageByExt = map[string]string{
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".py":   "python",
	".rs":   "rust",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".hpp":  "cpp",
	".rb":   "ruby",
	".php":  "php",
}

// FileRef identifies one discovered file and its resolved language.
type FileRef struct {
	Path     string // absolute path
	RelPath  string // slash-separated, relative to root
	Language string
}

// Discovery finds files eligible for indexing under a project root.
type Discovery struct {
	rootDir        string
	supported      map[string]bool
	ignorePatterns []glob.Glob
}

// New compiles the ignore globs and builds the supported-language set.
// Grounded on NewFileDiscovery in the teacher, but patterns here gate
// the whole tree rather than separate code/docs buckets.
func New(rootDir string, languages []string, ignoreGlobs []string) (*Discovery, error) {
	d := &Discovery{
		rootDir:   rootDir,
		supported: make(map[string]bool, len(languages)),
	}
	for _, lang := range languages {
		d.supported[lang] = true
	}
	for _, pattern := range ignoreGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.ignorePatterns = append(d.ignorePatterns, g)
	}
	return d, nil
}

// Discover walks the project tree and returns every eligible FileRef,
// applying ignore globs, the supported-language set, binary sniffing
// and symlink-escape exclusion, per spec §4.1.
func (d *Discovery) Discover() ([]FileRef, error) {
	var refs []FileRef

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.shouldIgnore(relPath) {
			return nil
		}

		lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]
		if !ok || !d.supported[lang] {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if escapesRoot(d.rootDir, path) {
				return nil
			}
		}

		isBinary, err := looksBinary(path)
		if err != nil || isBinary {
			return nil
		}

		refs = append(refs, FileRef{Path: path, RelPath: relPath, Language: lang})
		return nil
	})

	return refs, err
}

// ShouldIgnore reports whether relPath is excluded by this Discovery's
// ignore globs or reserved directories, for callers outside the
// package that need to mirror the same filter (the filesystem watcher,
// notably).
func (d *Discovery) ShouldIgnore(relPath string) bool {
	return d.shouldIgnore(relPath)
}

func (d *Discovery) shouldIgnore(relPath string) bool {
	if strings.HasPrefix(relPath, ".codeintel/") || relPath == ".codeintel" {
		return true
	}
	if strings.HasPrefix(relPath, ".git/") || relPath == ".git" {
		return true
	}
	if d.matchesAny(relPath) {
		return true
	}
	return d.matchesAny(relPath + "/**")
}

func (d *Discovery) matchesAny(path string) bool {
	for _, p := range d.ignorePatterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// escapesRoot reports whether a symlink at path resolves outside root.
func escapesRoot(root, path string) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return true
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return true
	}
	rel, err := filepath.Rel(absRoot, resolved)
	if err != nil {
		return true
	}
	return strings.HasPrefix(rel, "..")
}

// looksBinary sniffs the first 4 KiB for NUL bytes or invalid UTF-8,
// per spec §4.1's binary-file exclusion rule.
func looksBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 4096)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	buf = buf[:n]

	if bytes.ContainsRune(buf, 0) {
		return true, nil
	}
	return !utf8.Valid(buf), nil
}
