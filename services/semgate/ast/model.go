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
	sitter "github.com/smacker/go-tree-sitter"
)

// SourceModel bundles a StructuralModel with the syntax tree it was
// extracted from.
//
// Description:
//
//	Analyzers consume the normalized Model lists and never touch the
//	tree directly. The tree is retained only so the extraction walk can
//	resolve scopes against live nodes; Close releases it.
//
// Thread Safety:
//
//	A SourceModel is immutable after extraction and safe for concurrent
//	reads. Close must only be called once all readers are done.
type SourceModel struct {
	Model StructuralModel

	tree   *sitter.Tree
	closed bool
}

// Close releases the underlying tree-sitter tree. The Model lists stay
// valid after Close.
func (m *SourceModel) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if m.tree != nil {
		m.tree.Close()
		m.tree = nil
	}
}

// spanOf converts a tree-sitter node extent to a Span.
// Lines are converted to 1-indexed; columns stay 0-indexed.
func spanOf(n *sitter.Node) Span {
	return Span{
		StartLine: int(n.StartPoint().Row) + 1,
		StartCol:  int(n.StartPoint().Column),
		EndLine:   int(n.EndPoint().Row) + 1,
		EndCol:    int(n.EndPoint().Column),
	}
}
