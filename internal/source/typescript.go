package source

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tsExtractor extracts symbols and import specifiers from TypeScript and
// JavaScript source files.
type tsExtractor struct{}

func (e *tsExtractor) Extract(root *tree_sitter.Node, src []byte) ([]Symbol, []string) {
	var symbols []Symbol
	var imports []string

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, src, 0, &symbols, &imports)
	return symbols, imports
}

// walk traverses the tree depth-first. fnDepth tracks how many enclosing
// function bodies the cursor is inside so local variables are not emitted.
func (e *tsExtractor) walk(cursor *tree_sitter.TreeCursor, src []byte, fnDepth int, symbols *[]Symbol, imports *[]string) {
	node := cursor.Node()
	kind := node.Kind()

	switch kind {
	case "function_declaration":
		if sym := e.extractNamed(node, src, KindFunction); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "class_declaration":
		if sym := e.extractNamed(node, src, KindClass); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "interface_declaration":
		if sym := e.extractNamed(node, src, KindInterface); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "method_definition":
		if sym := e.extractNamed(node, src, KindMethod); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "lexical_declaration", "variable_declaration":
		if fnDepth == 0 {
			*symbols = append(*symbols, e.extractDeclarators(node, src)...)
		}

	case "export_statement":
		// Re-exports (`export { a } from './x'`) have no inner declaration;
		// declarations under an export_statement are emitted on their own.
		*symbols = append(*symbols, e.extractReExports(node, src)...)
		if path := importSource(node, src); path != "" {
			*imports = append(*imports, path)
		}

	case "import_statement":
		if path := importSource(node, src); path != "" {
			*imports = append(*imports, path)
		}
	}

	childDepth := fnDepth
	switch kind {
	case "function_declaration", "method_definition", "arrow_function", "function_expression":
		childDepth++
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, src, childDepth, symbols, imports)
		for cursor.GotoNextSibling() {
			e.walk(cursor, src, childDepth, symbols, imports)
		}
		cursor.GotoParent()
	}
}

// extractNamed extracts a symbol from a node with a "name" field child.
func (e *tsExtractor) extractNamed(node *tree_sitter.Node, src []byte, kind SymbolKind) *Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)
	startLine, endLine := span(node)
	return &Symbol{
		Name:      name,
		Kind:      kind,
		Exported:  isTSExported(node),
		Signature: signatureUpTo(node, node.ChildByFieldName("body"), src),
		StartLine: startLine,
		EndLine:   endLine,
	}
}

// extractDeclarators emits top-level const/let/var declarators. Declarators
// bound to arrow functions are classified as functions, everything else as
// variables.
func (e *tsExtractor) extractDeclarators(node *tree_sitter.Node, src []byte) []Symbol {
	var result []Symbol
	exported := isTSExported(node)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Utf8Text(src)

		kind := KindVariable
		sig := firstLine(child.Utf8Text(src))
		if valueNode := child.ChildByFieldName("value"); valueNode != nil && valueNode.Kind() == "arrow_function" {
			kind = KindFunction
			sig = signatureUpTo(child, valueNode.ChildByFieldName("body"), src)
		}

		startLine, endLine := span(child)
		result = append(result, Symbol{
			Name:      name,
			Kind:      kind,
			Exported:  exported,
			Signature: sig,
			StartLine: startLine,
			EndLine:   endLine,
		})
	}
	return result
}

// extractReExports handles `export { a, b } from './mod'` statements, which
// re-expose names without declaring them.
func (e *tsExtractor) extractReExports(node *tree_sitter.Node, src []byte) []Symbol {
	if node.ChildByFieldName("declaration") != nil {
		return nil
	}

	var result []Symbol
	for i := uint(0); i < node.ChildCount(); i++ {
		clause := node.Child(i)
		if clause == nil || clause.Kind() != "export_clause" {
			continue
		}
		for j := uint(0); j < clause.ChildCount(); j++ {
			spec := clause.Child(j)
			if spec == nil || spec.Kind() != "export_specifier" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := nameNode.Utf8Text(src)
			startLine, endLine := span(spec)
			result = append(result, Symbol{
				Name:      name,
				Kind:      KindExport,
				Exported:  true,
				Signature: firstLine(node.Utf8Text(src)),
				StartLine: startLine,
				EndLine:   endLine,
			})
		}
	}
	return result
}

// importSource pulls the module specifier string out of an import or export
// statement, or "" when the statement has no source.
func importSource(node *tree_sitter.Node, src []byte) string {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "string" {
				sourceNode = child
				break
			}
		}
	}
	if sourceNode == nil {
		return ""
	}
	return strings.Trim(sourceNode.Utf8Text(src), "\"'`")
}

// isTSExported checks whether a node's parent is an export_statement.
func isTSExported(node *tree_sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Kind() == "export_statement"
}
