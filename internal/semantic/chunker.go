package semantic

import (
	"regexp"
	"strings"
)

// DefaultMaxChunkChars caps accumulated characters per chunk.
const DefaultMaxChunkChars = 2000

// minChunkLines is how many lines a chunk must already hold before a
// declaration boundary is allowed to close it.
const minChunkLines = 5

// boundaryRe matches lines that open a new top-level construct across the
// supported languages (function/class/interface starts).
var boundaryRe = regexp.MustCompile(
	`^\s*(?:export\s+(?:default\s+)?)?(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:func|fn|def|class|interface|type|impl|function)\b`,
)

// Split slices a file's content into chunks. Lines accumulate into the
// current chunk; the chunk closes when a new declaration boundary appears
// after the minimum line count, or when the character cap is reached. A
// non-empty trailing chunk is always flushed. Chunks partition the file's
// lines without gaps or overlaps; line numbers are 0-indexed inclusive.
func Split(file, content string, maxChunkChars int) []Chunk {
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}

	lines := strings.Split(content, "\n")
	var chunks []Chunk

	start := 0
	var buf []string
	size := 0

	emit := func(endLine int) {
		text := strings.Join(buf, "\n")
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, Chunk{
				File:      file,
				StartLine: start,
				EndLine:   endLine,
				Content:   text,
			})
		}
		buf = buf[:0]
		size = 0
	}

	for i, line := range lines {
		if len(buf) > minChunkLines && boundaryRe.MatchString(line) {
			emit(i - 1)
			start = i
		}

		buf = append(buf, line)
		size += len(line) + 1

		if size >= maxChunkChars {
			emit(i)
			start = i + 1
		}
	}

	if len(buf) > 0 {
		emit(len(lines) - 1)
	}

	return chunks
}
