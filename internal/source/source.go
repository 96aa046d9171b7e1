// Package source defines the file-level data model for the context engine
// and extracts symbols from source text using tree-sitter grammars.
package source

import (
	"github.com/go-enry/go-enry/v2"
)

// Language identifies a programming language for parsing.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"

	// LangUnknown marks files with no registered grammar. They still
	// participate in graph building, chunking, and assembly; they just
	// yield no symbols.
	LangUnknown Language = ""
)

// SupportedLanguages are the languages with full symbol extraction support.
var SupportedLanguages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

// SymbolKind classifies extracted declarations.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindMethod    SymbolKind = "method"
	KindVariable  SymbolKind = "variable"
	KindExport    SymbolKind = "export"
)

// Symbol is a named declaration extracted from a source file. Line numbers
// are 0-indexed and inclusive; EndLine >= StartLine.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	Exported  bool       `json:"exported"`
	Signature string     `json:"signature"`
	StartLine int        `json:"startLine"`
	EndLine   int        `json:"endLine"`
}

// FileRecord is one scanned file: its path (unique within a snapshot), its
// content, the symbols extracted from it, and its raw, unresolved import
// specifiers. Records are immutable once built and rebuilt on re-scan.
type FileRecord struct {
	Path        string   `json:"path"`
	Language    Language `json:"language"`
	Content     string   `json:"content"`
	Symbols     []Symbol `json:"symbols"`
	ImportPaths []string `json:"importPaths"`
}

// enryToLanguage maps go-enry language names onto the supported grammar set.
// JavaScript dialects parse acceptably under the TypeScript grammar.
var enryToLanguage = map[string]Language{
	"Go":         LangGo,
	"TypeScript": LangTypeScript,
	"TSX":        LangTypeScript,
	"JavaScript": LangTypeScript,
	"JSX":        LangTypeScript,
	"Python":     LangPython,
	"Rust":       LangRust,
}

// DetectLanguage classifies a file by filename and content via go-enry and
// maps the result onto the supported language set. Files enry cannot
// classify, or classifies as something without a grammar, come back as
// LangUnknown.
func DetectLanguage(path string, content []byte) Language {
	name := enry.GetLanguage(path, content)
	if lang, ok := enryToLanguage[name]; ok {
		return lang
	}
	return LangUnknown
}
