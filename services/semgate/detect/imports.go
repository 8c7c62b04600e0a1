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

// DiffImports compares import structure per module path.
//
// Type-only imports have no runtime effect and are invisible here. A
// module appearing is low, disappearing is medium. For modules present
// on both sides the specifier sets are diffed: additions low, removals
// medium. Side-effect-only imports are order-sensitive: an unchanged
// multiset in a different order is one medium record.
func DiffImports(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	baseGroups := groupImports(base.Imports)
	headGroups := groupImports(head.Imports)

	for _, mod := range sortedModules(baseGroups) {
		bg := baseGroups[mod]
		hg, ok := headGroups[mod]
		if !ok {
			out = append(out, record(KindImportRemoved, SeverityMedium, params, bg.span, AnchorBase,
				mod, fmt.Sprintf("import of %q removed", mod)))
			continue
		}
		out = append(out, diffSpecifiers(mod, bg, hg, params)...)
	}
	for _, mod := range sortedModules(headGroups) {
		if _, ok := baseGroups[mod]; !ok {
			hg := headGroups[mod]
			out = append(out, record(KindImportAdded, SeverityLow, params, hg.span, AnchorHead,
				mod, fmt.Sprintf("import of %q added", mod)))
		}
	}

	out = append(out, diffSideEffectOrder(base.Imports, head.Imports, params)...)
	return out
}

// importGroup merges all runtime import statements of one module path.
type importGroup struct {
	specifiers []string
	span       ast.Span
}

func groupImports(imports []ast.ImportSite) map[string]*importGroup {
	groups := make(map[string]*importGroup)
	for i := range imports {
		imp := &imports[i]
		if imp.TypeOnly {
			continue
		}
		g, ok := groups[imp.Module]
		if !ok {
			g = &importGroup{span: imp.Span}
			groups[imp.Module] = g
		}
		if imp.Default != "" {
			g.specifiers = append(g.specifiers, "default:"+imp.Default)
		}
		if imp.Namespace != "" {
			g.specifiers = append(g.specifiers, "namespace:"+imp.Namespace)
		}
		g.specifiers = append(g.specifiers, imp.Specifiers...)
	}
	return groups
}

func sortedModules(groups map[string]*importGroup) []string {
	mods := make([]string, 0, len(groups))
	for mod := range groups {
		mods = append(mods, mod)
	}
	// Deterministic analyzer output requires a stable iteration order.
	for i := 1; i < len(mods); i++ {
		for j := i; j > 0 && mods[j] < mods[j-1]; j-- {
			mods[j], mods[j-1] = mods[j-1], mods[j]
		}
	}
	return mods
}

// diffSpecifiers diffs the specifier sets of one shared module.
func diffSpecifiers(mod string, bg, hg *importGroup, params Params) []ChangeRecord {
	var out []ChangeRecord
	baseSet := stringSet(bg.specifiers)
	headSet := stringSet(hg.specifiers)

	for _, s := range bg.specifiers {
		if !headSet[s] {
			out = append(out, record(KindImportSpecifierRemoved, SeverityMedium, params, hg.span, AnchorHead,
				mod, fmt.Sprintf("import specifier %q removed from %q", s, mod)))
		}
	}
	for _, s := range hg.specifiers {
		if !baseSet[s] {
			out = append(out, record(KindImportSpecifierAdded, SeverityLow, params, hg.span, AnchorHead,
				mod, fmt.Sprintf("import specifier %q added to %q", s, mod)))
		}
	}
	return out
}

func stringSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

// diffSideEffectOrder flags reordering of bare side-effect imports.
// Module-level side effects execute in import order, so an unchanged
// set in a different order is still a behavior change.
func diffSideEffectOrder(base, head []ast.ImportSite, params Params) []ChangeRecord {
	baseMods := sideEffectModules(base)
	headMods := sideEffectModules(head)
	if len(headMods) == 0 || !match.MultisetEqual(baseMods, headMods) || match.OrderedEqual(baseMods, headMods) {
		return nil
	}
	span := firstSideEffectSpan(head)
	rec := record(KindSideEffectImportOrderChanged, SeverityMedium, params, span, AnchorHead,
		"", fmt.Sprintf("side-effect import order changed: [%s] -> [%s]",
			strings.Join(baseMods, ", "), strings.Join(headMods, ", ")))
	rec.Context = "[" + strings.Join(baseMods, ", ") + "] -> [" + strings.Join(headMods, ", ") + "]"
	return []ChangeRecord{rec}
}

func sideEffectModules(imports []ast.ImportSite) []string {
	var mods []string
	for _, imp := range imports {
		if imp.SideEffectOnly && !imp.TypeOnly {
			mods = append(mods, imp.Module)
		}
	}
	return mods
}

func firstSideEffectSpan(imports []ast.ImportSite) ast.Span {
	for _, imp := range imports {
		if imp.SideEffectOnly {
			return imp.Span
		}
	}
	return ast.Span{StartLine: 1, EndLine: 1}
}
