package source

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// languageExtractor walks a parsed tree and collects symbols plus raw import
// specifiers for one language.
type languageExtractor interface {
	Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []string)
}

// Extractor parses one file at a time with the grammar registered for its
// language. A new tree-sitter parser is created per Extract call, so the
// type is safe for sequential use from a single goroutine.
type Extractor struct {
	languages  map[Language]*tree_sitter.Language
	extractors map[Language]languageExtractor
}

// NewExtractor creates an Extractor with Go, TypeScript, Python, and Rust
// grammars registered.
func NewExtractor() *Extractor {
	return &Extractor{
		languages: map[Language]*tree_sitter.Language{
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
		extractors: map[Language]languageExtractor{
			LangGo:         &goExtractor{},
			LangTypeScript: &tsExtractor{},
			LangPython:     &pyExtractor{},
			LangRust:       &rsExtractor{},
		},
	}
}

// Supports reports whether a grammar is registered for lang.
func (e *Extractor) Supports(lang Language) bool {
	_, ok := e.languages[lang]
	return ok
}

// Extract parses source and returns the symbols and raw import specifiers in
// document order. A source that fails to parse returns an error; callers
// treat that as a per-file warning, not a build failure. Identical input
// always yields an identical symbol list.
func (e *Extractor) Extract(path string, src []byte, lang Language) ([]Symbol, []string, error) {
	tsLang, ok := e.languages[lang]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported language: %q", lang)
	}
	ext := e.extractors[lang]

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, nil, fmt.Errorf("parse %s: tree-sitter returned nil tree", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	symbols, imports := ext.Extract(root, src)
	return symbols, imports, nil
}

// --- shared signature helpers ---

const bodyPlaceholder = "{ ... }"

// signatureUpTo returns the declaration text from node start up to (and
// excluding) body, with the elided-body placeholder appended. When body is
// nil it falls back to the first line of the node text.
func signatureUpTo(node, body *tree_sitter.Node, src []byte) string {
	if body == nil {
		return firstLine(node.Utf8Text(src))
	}
	start := int(node.StartByte())
	end := int(body.StartByte())
	if end <= start || end > len(src) {
		return firstLine(node.Utf8Text(src))
	}
	head := strings.TrimRight(string(src[start:end]), " \t\n")
	return head + " " + bodyPlaceholder
}

// braceSignature returns the declaration text up to the first opening brace
// with the elided-body placeholder appended, or the first line when the
// declaration has no brace-delimited body (e.g. a type alias).
func braceSignature(node *tree_sitter.Node, src []byte) string {
	text := node.Utf8Text(src)
	idx := strings.IndexByte(text, '{')
	if idx < 0 {
		return firstLine(text)
	}
	head := strings.TrimRight(text[:idx], " \t\n")
	return head + " " + bodyPlaceholder
}

// colonSignature returns the header of a Python-style block declaration:
// the node text up to the first line-ending colon, with an elision marker.
func colonSignature(node *tree_sitter.Node, src []byte) string {
	line := firstLine(node.Utf8Text(src))
	if idx := strings.LastIndex(line, ":"); idx >= 0 {
		line = line[:idx+1]
	}
	return line + " ..."
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimRight(text[:idx], " \t")
	}
	return text
}

func span(node *tree_sitter.Node) (startLine, endLine int) {
	return int(node.StartPosition().Row), int(node.EndPosition().Row)
}
