package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/gatherworks/gather/internal/source"
)

// probeSuffixes are the recognized file-type suffixes tried, in order, when
// a bare import target is not itself a known file.
var probeSuffixes = []string{".go", ".ts", ".tsx", ".js", ".jsx", ".py", ".rs"}

// probeIndexes are the directory-index variants tried, in order, after the
// plain suffixes fail.
var probeIndexes = []string{"/index.ts", "/index.tsx", "/index.js", "/__init__.py", "/mod.rs"}

// Resolver rewrites raw import specifiers into repo-relative file paths that
// match FileRecord.Path values. It is built once per graph build with the
// set of known file paths; resolution never touches the filesystem.
type Resolver struct {
	fileSet      map[string]bool
	dirIndex     map[string][]string
	goModulePath string
}

// NewResolver builds a Resolver from the known repo-relative file paths and
// the project's Go module path ("" when the project has no go.mod).
func NewResolver(knownFiles []string, goModulePath string) *Resolver {
	r := &Resolver{
		fileSet:      make(map[string]bool, len(knownFiles)),
		dirIndex:     make(map[string][]string),
		goModulePath: goModulePath,
	}
	for _, f := range knownFiles {
		r.fileSet[f] = true
		dir := path.Dir(f)
		r.dirIndex[dir] = append(r.dirIndex[dir], f)
	}
	for _, files := range r.dirIndex {
		sort.Strings(files)
	}
	return r
}

// Resolve maps one raw import specifier from sourceFile to a known file
// path. It returns false for anything that lands outside the known file set
// (stdlib, third-party packages, unresolvable paths).
func (r *Resolver) Resolve(spec, sourceFile string, lang source.Language) (string, bool) {
	if spec == "" {
		return "", false
	}

	switch lang {
	case source.LangGo:
		return r.resolveGo(spec)
	case source.LangPython:
		return r.resolvePython(spec, sourceFile)
	case source.LangRust:
		return r.resolveRust(spec, sourceFile)
	default:
		return r.resolveRelative(spec, sourceFile)
	}
}

// resolveRelative handles "./x" and "../x" specifiers (TypeScript,
// JavaScript) against the importing file's directory.
func (r *Resolver) resolveRelative(spec, sourceFile string) (string, bool) {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return "", false // bare package specifier, external
	}
	base := path.Clean(path.Join(path.Dir(sourceFile), spec))
	return r.probe(base)
}

// resolveGo maps module-path imports onto repo directories, picking the
// lexically first non-test .go file in the target directory.
func (r *Resolver) resolveGo(spec string) (string, bool) {
	if r.goModulePath == "" || !strings.HasPrefix(spec, r.goModulePath) {
		return "", false // stdlib or external module
	}
	relDir := strings.TrimPrefix(spec, r.goModulePath)
	relDir = strings.TrimPrefix(relDir, "/")
	if relDir == "" {
		relDir = "."
	}
	for _, f := range r.dirIndex[relDir] {
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			return f, true
		}
	}
	return "", false
}

// resolvePython handles both relative ("..pkg.mod") and absolute
// ("pkg.mod") module specifiers. Absolute specifiers are probed from the
// repo root; ones that match nothing are treated as external.
func (r *Resolver) resolvePython(spec, sourceFile string) (string, bool) {
	if strings.HasPrefix(spec, ".") {
		dots := 0
		for _, c := range spec {
			if c != '.' {
				break
			}
			dots++
		}
		modulePart := spec[dots:]

		// One dot = importing file's package, each extra dot one level up.
		baseDir := path.Dir(sourceFile)
		for i := 1; i < dots; i++ {
			baseDir = path.Dir(baseDir)
		}

		if modulePart == "" {
			return r.probe(path.Join(baseDir, "__init__"))
		}
		return r.probe(path.Join(baseDir, strings.ReplaceAll(modulePart, ".", "/")))
	}

	return r.probe(strings.ReplaceAll(spec, ".", "/"))
}

// resolveRust handles crate::, self::, and super:: use paths.
func (r *Resolver) resolveRust(spec, sourceFile string) (string, bool) {
	// Strip use-list braces: "crate::model::{A, B}" -> "crate::model".
	if idx := strings.Index(spec, "::{"); idx != -1 {
		spec = spec[:idx]
	}

	switch {
	case strings.HasPrefix(spec, "crate::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(spec, "crate::"), "::", "/")
		for _, base := range []string{path.Join("src", rel), rel} {
			if resolved, ok := r.probeModule(base); ok {
				return resolved, true
			}
		}
		return "", false

	case strings.HasPrefix(spec, "self::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(spec, "self::"), "::", "/")
		return r.probeModule(path.Join(path.Dir(sourceFile), rel))

	case strings.HasPrefix(spec, "super::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(spec, "super::"), "::", "/")
		return r.probeModule(path.Join(path.Dir(path.Dir(sourceFile)), rel))

	default:
		return "", false // external crate
	}
}

// probeModule probes the full use path, then its parent. The last segment
// of a use path is usually an item (type, function), not a module, so
// "store/Session" has to fall back to "store".
func (r *Resolver) probeModule(base string) (string, bool) {
	if resolved, ok := r.probe(base); ok {
		return resolved, true
	}
	parent := path.Dir(base)
	if parent == "." || parent == base {
		return "", false
	}
	return r.probe(parent)
}

// probe tries, in fixed priority order, the bare path, the recognized
// file-type suffixes, and the directory-index variants, stopping at the
// first known file.
func (r *Resolver) probe(base string) (string, bool) {
	if r.fileSet[base] {
		return base, true
	}
	for _, suffix := range probeSuffixes {
		if candidate := base + suffix; r.fileSet[candidate] {
			return candidate, true
		}
	}
	for _, index := range probeIndexes {
		if candidate := base + index; r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}
