package assemble

import (
	"sort"
	"strings"
	"unicode"

	"github.com/gatherworks/gather/internal/source"
)

// minKeywordLen filters out short task tokens that would match everything.
const minKeywordLen = 3

// SeedFiles derives ranker seeds from the task string: a file is a seed
// when its path or any exported symbol name contains a task keyword,
// case-insensitive. The result is sorted by path.
func SeedFiles(files []source.FileRecord, task string) []string {
	keywords := taskKeywords(task)
	if len(keywords) == 0 {
		return nil
	}

	var seeds []string
	for _, f := range files {
		if matchesKeywords(f, keywords) {
			seeds = append(seeds, f.Path)
		}
	}
	sort.Strings(seeds)
	return seeds
}

// taskKeywords splits the task on non-alphanumeric runes and lowercases
// the surviving tokens.
func taskKeywords(task string) []string {
	fields := strings.FieldsFunc(task, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var keywords []string
	for _, f := range fields {
		if len(f) >= minKeywordLen {
			keywords = append(keywords, strings.ToLower(f))
		}
	}
	return keywords
}

func matchesKeywords(f source.FileRecord, keywords []string) bool {
	path := strings.ToLower(f.Path)
	for _, kw := range keywords {
		if strings.Contains(path, kw) {
			return true
		}
		for _, sym := range f.Symbols {
			if sym.Exported && strings.Contains(strings.ToLower(sym.Name), kw) {
				return true
			}
		}
	}
	return false
}
