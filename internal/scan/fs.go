package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FS is the filesystem collaborator. The engine only ever reads.
type FS interface {
	// ListFiles returns repo-relative, slash-separated paths under root
	// that pass the include and exclude patterns, in lexical order.
	ListFiles(root string, include, exclude []string) ([]string, error)
	// ReadFile returns the content of one file given its absolute path.
	ReadFile(path string) (string, error)
}

// ignoreFileName is the project-local ignore file, gitignore syntax.
const ignoreFileName = ".gatherignore"

// maxFileSize is the largest file considered (1 MB).
const maxFileSize = 1 << 20

// defaultIgnores apply to every scan in addition to any ignore file.
var defaultIgnores = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	"vendor",
	"__pycache__",
	".idea",
	".vscode",
	"dist",
	"build",
	"target",
}

// OSFS implements FS against the local filesystem, honoring the project's
// ignore file plus the caller's patterns.
type OSFS struct{}

// ListFiles walks root and returns the relative paths of regular files that
// pass the filters. Directories matching ignore patterns are pruned;
// symlinks and oversized files are skipped.
func (OSFS) ListFiles(root string, include, exclude []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}

	matcher := compileIgnores(absRoot, exclude)

	var paths []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths, keep walking
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if matcher.MatchesPath(rel) {
			return nil
		}
		if !matchesInclude(rel, include) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() == 0 || info.Size() > maxFileSize {
			return nil
		}

		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// ReadFile returns the file's content as a string.
func (OSFS) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// compileIgnores merges the built-in defaults, the project ignore file, and
// the caller's exclude patterns into one gitignore matcher.
func compileIgnores(absRoot string, exclude []string) *gitignore.GitIgnore {
	patterns := append([]string{}, defaultIgnores...)

	if data, err := os.ReadFile(filepath.Join(absRoot, ignoreFileName)); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, line)
		}
	}

	patterns = append(patterns, exclude...)
	return gitignore.CompileIgnoreLines(patterns...)
}

// matchesInclude applies include globs against the relative path and its
// base name. An empty include list admits everything.
func matchesInclude(rel string, include []string) bool {
	if len(include) == 0 {
		return true
	}
	base := filepath.Base(rel)
	for _, pattern := range include {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

var _ FS = OSFS{}
