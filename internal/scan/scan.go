// Package scan walks a project tree, reads its source files, and produces
// the snapshot the rest of the engine works from: per-file content,
// detected language, extracted symbols, and import strings.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gatherworks/gather/internal/source"
)

// ErrRootUnreadable reports that the project root could not be listed at
// all. It is the one fatal scan failure; individual file problems degrade
// to warnings.
var ErrRootUnreadable = errors.New("project root unreadable")

// Options controls a scan.
type Options struct {
	// Include restricts the scan to files matching these globs. Empty
	// means every file under root that survives the excludes.
	Include []string
	// Exclude adds gitignore-style patterns on top of the defaults and
	// the project's ignore file.
	Exclude []string
	// Concurrency bounds parallel file reads; 0 uses GOMAXPROCS.
	Concurrency int
}

// Snapshot is the scanned state of one project root.
type Snapshot struct {
	// Root is the absolute project root.
	Root string
	// Files holds every scanned file in lexical path order.
	Files []source.FileRecord
	// GoModulePath is the module path from root/go.mod, empty when the
	// project has no Go module.
	GoModulePath string
}

// Scanner reads a project through an FS and extracts symbols from every
// file whose language it supports.
type Scanner struct {
	fs        FS
	extractor *source.Extractor
	log       *slog.Logger
}

// NewScanner builds a scanner over the given filesystem. A nil logger
// discards log output.
func NewScanner(filesystem FS, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{
		fs:        filesystem,
		extractor: source.NewExtractor(),
		log:       logger,
	}
}

// Scan lists, reads, and parses the project under root. Files that fail to
// read or parse are dropped from the snapshot and reported as warnings;
// only an unlistable root is fatal.
func (s *Scanner) Scan(ctx context.Context, root string, opts Options) (*Snapshot, []string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}

	paths, err := s.fs.ListFiles(absRoot, opts.Include, opts.Exclude)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}
	s.log.Debug("scan listed files", "root", absRoot, "count", len(paths))

	contents, readWarnings := s.readAll(ctx, absRoot, paths, opts.Concurrency)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	warnings := readWarnings
	var files []source.FileRecord
	for i, rel := range paths {
		content, ok := contents[i]
		if !ok {
			continue
		}

		lang := source.DetectLanguage(rel, []byte(content))
		record := source.FileRecord{
			Path:     rel,
			Language: lang,
			Content:  content,
		}

		if s.extractor.Supports(lang) {
			symbols, imports, err := s.extractor.Extract(rel, []byte(content), lang)
			if err != nil {
				msg := fmt.Sprintf("parse %s: %v", rel, err)
				s.log.Warn("file skipped", "path", rel, "error", err)
				warnings = append(warnings, msg)
				continue
			}
			record.Symbols = symbols
			record.ImportPaths = imports
		}

		files = append(files, record)
	}

	snapshot := &Snapshot{
		Root:         absRoot,
		Files:        files,
		GoModulePath: s.goModulePath(absRoot),
	}
	s.log.Info("scan complete", "root", absRoot, "files", len(files), "warnings", len(warnings))
	return snapshot, warnings, nil
}

// readAll reads the listed files with bounded concurrency. Results land in
// a map keyed by list position so output order never depends on scheduling;
// unreadable files become warnings.
func (s *Scanner) readAll(ctx context.Context, absRoot string, paths []string, concurrency int) (map[int]string, []string) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	contents := make([]string, len(paths))
	failed := make([]error, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, rel := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := s.fs.ReadFile(filepath.Join(absRoot, filepath.FromSlash(rel)))
			if err != nil {
				failed[i] = err
				return nil
			}
			contents[i] = data
			return nil
		})
	}
	// The only group error is context cancellation; the caller checks
	// ctx.Err after we return.
	_ = g.Wait()

	out := make(map[int]string, len(paths))
	var warnings []string
	for i, rel := range paths {
		if failed[i] != nil {
			warnings = append(warnings, fmt.Sprintf("read %s: %v", rel, failed[i]))
			s.log.Warn("file unreadable", "path", rel, "error", failed[i])
			continue
		}
		out[i] = contents[i]
	}
	return out, warnings
}

var moduleRe = regexp.MustCompile(`(?m)^module\s+(\S+)`)

// goModulePath extracts the module path from root/go.mod when present.
func (s *Scanner) goModulePath(absRoot string) string {
	data, err := s.fs.ReadFile(filepath.Join(absRoot, "go.mod"))
	if err != nil {
		return ""
	}
	if m := moduleRe.FindStringSubmatch(data); m != nil {
		return m[1]
	}
	return ""
}
