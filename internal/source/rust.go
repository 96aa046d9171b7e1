package source

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rsExtractor extracts symbols and import specifiers from Rust source files.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, src []byte) ([]Symbol, []string) {
	var symbols []Symbol
	var imports []string

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, src, false, &symbols, &imports)
	return symbols, imports
}

// walk traverses depth-first. inImpl marks function_items inside an impl
// block so they classify as methods.
func (e *rsExtractor) walk(cursor *tree_sitter.TreeCursor, src []byte, inImpl bool, symbols *[]Symbol, imports *[]string) {
	node := cursor.Node()
	kind := node.Kind()

	switch kind {
	case "function_item":
		symKind := KindFunction
		if inImpl {
			symKind = KindMethod
		}
		if sym := e.extractNamed(node, src, symKind); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "struct_item", "enum_item":
		if sym := e.extractNamed(node, src, KindClass); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "trait_item":
		if sym := e.extractNamed(node, src, KindInterface); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "static_item", "const_item":
		if sym := e.extractNamed(node, src, KindVariable); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "use_declaration":
		if arg := node.ChildByFieldName("argument"); arg != nil {
			if path := arg.Utf8Text(src); path != "" {
				*imports = append(*imports, path)
			}
		}
	}

	childInImpl := inImpl || kind == "impl_item"

	if cursor.GotoFirstChild() {
		e.walk(cursor, src, childInImpl, symbols, imports)
		for cursor.GotoNextSibling() {
			e.walk(cursor, src, childInImpl, symbols, imports)
		}
		cursor.GotoParent()
	}
}

// extractNamed extracts a symbol from a node with a "name" field child.
func (e *rsExtractor) extractNamed(node *tree_sitter.Node, src []byte, kind SymbolKind) *Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)
	startLine, endLine := span(node)
	return &Symbol{
		Name:      name,
		Kind:      kind,
		Exported:  isRustPub(node),
		Signature: signatureUpTo(node, node.ChildByFieldName("body"), src),
		StartLine: startLine,
		EndLine:   endLine,
	}
}

// isRustPub checks whether the item carries a visibility_modifier child.
func isRustPub(node *tree_sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "visibility_modifier" {
			return true
		}
	}
	return false
}
