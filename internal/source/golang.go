package source

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// goExtractor extracts symbols and import specifiers from Go source files.
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, src []byte) ([]Symbol, []string) {
	var symbols []Symbol
	var imports []string

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, src, &symbols, &imports)
	return symbols, imports
}

func (e *goExtractor) walk(cursor *tree_sitter.TreeCursor, src []byte, symbols *[]Symbol, imports *[]string) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_declaration":
		if sym := e.extractFunc(node, src, KindFunction); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "method_declaration":
		if sym := e.extractFunc(node, src, KindMethod); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "type_declaration":
		*symbols = append(*symbols, e.extractTypeDeclaration(node, src)...)

	case "const_declaration", "var_declaration":
		// Only package-level declarations; locals use := or sit inside blocks.
		if parent := node.Parent(); parent != nil && parent.Kind() == "source_file" {
			*symbols = append(*symbols, e.extractValueSpecs(node, src)...)
		}

	case "import_spec":
		if path := e.extractImport(node, src); path != "" {
			*imports = append(*imports, path)
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, src, symbols, imports)
		for cursor.GotoNextSibling() {
			e.walk(cursor, src, symbols, imports)
		}
		cursor.GotoParent()
	}
}

func (e *goExtractor) extractFunc(node *tree_sitter.Node, src []byte, kind SymbolKind) *Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)
	startLine, endLine := span(node)
	return &Symbol{
		Name:      name,
		Kind:      kind,
		Exported:  isGoExported(name),
		Signature: signatureUpTo(node, node.ChildByFieldName("body"), src),
		StartLine: startLine,
		EndLine:   endLine,
	}
}

func (e *goExtractor) extractTypeDeclaration(node *tree_sitter.Node, src []byte) []Symbol {
	var result []Symbol

	// type_declaration contains one or more type_spec children.
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "type_spec" {
			continue
		}
		if sym := e.extractTypeSpec(child, src); sym != nil {
			result = append(result, *sym)
		}
	}
	return result
}

func (e *goExtractor) extractTypeSpec(node *tree_sitter.Node, src []byte) *Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)

	kind := KindClass
	if typeNode := node.ChildByFieldName("type"); typeNode != nil && typeNode.Kind() == "interface_type" {
		kind = KindInterface
	}

	sig := "type " + braceSignature(node, src)

	startLine, endLine := span(node)
	return &Symbol{
		Name:      name,
		Kind:      kind,
		Exported:  isGoExported(name),
		Signature: sig,
		StartLine: startLine,
		EndLine:   endLine,
	}
}

func (e *goExtractor) extractValueSpecs(node *tree_sitter.Node, src []byte) []Symbol {
	var result []Symbol
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || (child.Kind() != "const_spec" && child.Kind() != "var_spec") {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Utf8Text(src)
		startLine, endLine := span(child)
		result = append(result, Symbol{
			Name:      name,
			Kind:      KindVariable,
			Exported:  isGoExported(name),
			Signature: firstLine(child.Utf8Text(src)),
			StartLine: startLine,
			EndLine:   endLine,
		})
	}
	return result
}

func (e *goExtractor) extractImport(node *tree_sitter.Node, src []byte) string {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		// Fall back to finding an interpreted_string_literal child.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "interpreted_string_literal" {
				pathNode = child
				break
			}
		}
	}
	if pathNode == nil {
		return ""
	}
	return strings.Trim(pathNode.Utf8Text(src), "\"")
}

// isGoExported returns true if the first rune of name is an uppercase letter.
func isGoExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
