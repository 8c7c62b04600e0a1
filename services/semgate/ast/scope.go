// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// maxSpreadDepth bounds recursive spread expansion so self-referential
// declarations cannot loop.
const maxSpreadDepth = 5

// scopeBlockTypes are the node types that open a lexical scope for
// dependency-list resolution. Walking outward stops at the first scope
// containing a matching declaration, so inner shadows always win.
var scopeBlockTypes = map[string]bool{
	"statement_block": true,
	"program":         true,
	"class_body":      true,
}

// resolveDependencyList flattens a hook dependency argument into a list
// of normalized expression texts.
//
// An array literal is flattened element by element. A bare identifier is
// expanded to the array-literal initializer of its nearest enclosing
// scope's declaration; an outer shadowed declaration is never consulted.
// Spread elements are expanded recursively up to maxSpreadDepth.
//
// Returns nil when the argument cannot be resolved to a list; callers
// treat that as "no resolvable dependency list".
func resolveDependencyList(arg *sitter.Node, content []byte) []string {
	return resolveDepExpr(arg, content, maxSpreadDepth)
}

func resolveDepExpr(arg *sitter.Node, content []byte, depth int) []string {
	if arg == nil || depth <= 0 {
		return nil
	}
	switch arg.Type() {
	case "array":
		return flattenArrayLiteral(arg, content, depth)
	case "identifier":
		decl := findArrayInitializer(arg, nodeText(arg, content), content)
		if decl == nil {
			return nil
		}
		return flattenArrayLiteral(decl, content, depth-1)
	case "as_expression", "satisfies_expression", "parenthesized_expression":
		// Unwrap `deps as const` and parenthesized forms.
		if inner := arg.NamedChild(0); inner != nil {
			return resolveDepExpr(inner, content, depth)
		}
	}
	return nil
}

// flattenArrayLiteral lists the elements of an array literal, expanding
// spreads recursively.
func flattenArrayLiteral(array *sitter.Node, content []byte, depth int) []string {
	out := make([]string, 0, int(array.NamedChildCount()))
	for i := 0; i < int(array.NamedChildCount()); i++ {
		el := array.NamedChild(i)
		if el.Type() == "comment" {
			continue
		}
		if el.Type() == "spread_element" {
			inner := el.NamedChild(0)
			if inner != nil && depth > 0 {
				if expanded := resolveDepExpr(inner, content, depth-1); expanded != nil {
					out = append(out, expanded...)
					continue
				}
			}
			out = append(out, NormalizeText(nodeText(el, content)))
			continue
		}
		out = append(out, NormalizeText(nodeText(el, content)))
	}
	return out
}

// findArrayInitializer resolves an identifier to the array-literal
// initializer of its declaration, searching from the innermost enclosing
// scope outward. The first matching declaration wins.
func findArrayInitializer(from *sitter.Node, name string, content []byte) *sitter.Node {
	for scope := from.Parent(); scope != nil; scope = scope.Parent() {
		if !scopeBlockTypes[scope.Type()] {
			continue
		}
		decl, declared := scanScopeForArray(scope, name, content)
		if declared {
			// The nearest declaration wins even when it is not an
			// array literal; an outer shadowed declaration is never
			// consulted.
			return decl
		}
	}
	return nil
}

// scanScopeForArray scans the direct statements of one scope block for a
// const/let/var declarator binding name. declared reports whether the
// scope declares name at all; the node is non-nil only when the
// initializer is an array literal.
func scanScopeForArray(scope *sitter.Node, name string, content []byte) (node *sitter.Node, declared bool) {
	for i := 0; i < int(scope.NamedChildCount()); i++ {
		stmt := scope.NamedChild(i)
		if stmt.Type() != "lexical_declaration" && stmt.Type() != "variable_declaration" {
			continue
		}
		for j := 0; j < int(stmt.NamedChildCount()); j++ {
			decl := stmt.NamedChild(j)
			if decl.Type() != "variable_declarator" {
				continue
			}
			nameNode := decl.ChildByFieldName("name")
			if nameNode == nil || nodeText(nameNode, content) != name {
				continue
			}
			value := unwrapExpression(decl.ChildByFieldName("value"))
			if value != nil && value.Type() == "array" {
				return value, true
			}
			return nil, true
		}
	}
	return nil, false
}

// unwrapExpression strips `as const`, satisfies, and parens.
func unwrapExpression(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "as_expression", "satisfies_expression", "parenthesized_expression", "non_null_expression":
			n = n.NamedChild(0)
		default:
			return n
		}
	}
	return nil
}

// nodeText returns the raw text of a node.
func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	start, end := int(n.StartByte()), int(n.EndByte())
	if start < 0 || end > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}

// isHookName reports whether a callee follows the reserved hook-pattern
// naming convention: a `use` prefix followed by an uppercase letter, on
// the last path segment.
func isHookName(callee string) bool {
	seg := callee
	if idx := strings.LastIndexByte(seg, '.'); idx >= 0 {
		seg = seg[idx+1:]
	}
	seg = strings.TrimSuffix(seg, "?")
	if !strings.HasPrefix(seg, "use") || len(seg) < 4 {
		return false
	}
	c := seg[3]
	return c >= 'A' && c <= 'Z'
}
