// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package detect

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/semgate/services/semgate/ast"
	"github.com/AleutianAI/semgate/services/semgate/match"
)

// DiffMarkup compares declarative markup elements.
//
// Elements pair first on an exact fingerprint (tag + location + attrs),
// which silently claims unchanged nodes, then on tag + location, which
// surfaces attribute-level edits. Leftovers are whole-element changes.
func DiffMarkup(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	_, pool := match.PairByUniqueKey(
		elementPtrs(base.Elements), elementPtrs(head.Elements),
		elementFingerprint,
	)

	// Claim remaining exact duplicates before attribute diffing.
	_, pool = match.PairWhere(pool, func(b, h *ast.MarkupElement) bool {
		return elementFingerprint(b) == elementFingerprint(h)
	})

	pairs, pool := match.PairWhere(pool, func(b, h *ast.MarkupElement) bool {
		return b.Tag == h.Tag && b.EnclosingFunc == h.EnclosingFunc
	})
	for _, p := range pairs {
		out = append(out, diffElementAttrs(p.Base, p.Head, params)...)
	}

	for _, el := range pool.Base {
		out = append(out, record(KindElementRemoved, SeverityMedium, params, el.Span, AnchorBase,
			el.Tag, fmt.Sprintf("element <%s> removed", el.Tag)))
	}
	for _, el := range pool.Head {
		out = append(out, record(KindElementAdded, SeverityMedium, params, el.Span, AnchorHead,
			el.Tag, fmt.Sprintf("element <%s> added", el.Tag)))
	}
	return out
}

func elementPtrs(els []ast.MarkupElement) []*ast.MarkupElement {
	out := make([]*ast.MarkupElement, len(els))
	for i := range els {
		out[i] = &els[i]
	}
	return out
}

func elementFingerprint(el *ast.MarkupElement) string {
	var b strings.Builder
	b.WriteString(el.Tag)
	b.WriteByte('|')
	b.WriteString(el.EnclosingFunc)
	for _, a := range el.Attrs {
		b.WriteByte('|')
		b.WriteString(a.Name)
		b.WriteByte('=')
		b.WriteString(a.Value)
	}
	return b.String()
}

// diffElementAttrs diffs the attribute maps of one paired element.
func diffElementAttrs(base, head *ast.MarkupElement, params Params) []ChangeRecord {
	var out []ChangeRecord
	baseAttrs := attrMap(base.Attrs)
	headAttrs := attrMap(head.Attrs)

	for _, a := range base.Attrs {
		hv, ok := headAttrs[a.Name]
		switch {
		case !ok:
			out = append(out, record(KindElementAttrRemoved, SeverityMedium, params, head.Span, AnchorHead,
				head.Tag, fmt.Sprintf("attribute %q removed from <%s>", a.Name, head.Tag)))
		case hv != a.Value:
			rec := record(KindElementAttrChanged, SeverityMedium, params, head.Span, AnchorHead,
				head.Tag, fmt.Sprintf("attribute %q of <%s> changed", a.Name, head.Tag))
			rec.Context = a.Value + " -> " + hv
			out = append(out, rec)
		}
	}
	for _, a := range head.Attrs {
		if _, ok := baseAttrs[a.Name]; !ok {
			out = append(out, record(KindElementAttrAdded, SeverityLow, params, head.Span, AnchorHead,
				head.Tag, fmt.Sprintf("attribute %q added to <%s>", a.Name, head.Tag)))
		}
	}
	return out
}

func attrMap(attrs []ast.MarkupAttr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return m
}
