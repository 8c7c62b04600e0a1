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

	"github.com/AleutianAI/semgate/services/semgate/ast"
	"github.com/AleutianAI/semgate/services/semgate/match"
)

// renameSimilarityThreshold is the body-text similarity above which a
// removed/added function pair is inferred to be a rename.
const renameSimilarityThreshold = 0.7

// DiffFunctions compares the function surface of two models.
//
// Functions are paired by identity key (name + enclosing scope + static
// flag + visibility). Paired functions are checked for return type,
// parameter shape, destructured key set, and generic constraint
// changes; unpaired functions are reported as removed (high) or added
// (medium), with rename inference for the one-removed/one-added case.
func DiffFunctions(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	pairs, pool := match.PairByUniqueKey(
		functionPtrs(base.Functions), functionPtrs(head.Functions),
		func(f *ast.FunctionSite) string { return f.IdentityKey() },
	)

	for _, p := range pairs {
		out = append(out, diffFunctionPair(p.Base, p.Head, params)...)
	}

	// Rename inference only applies to the unambiguous case: exactly
	// one removed and one added with no identity match.
	if len(pool.Base) == 1 && len(pool.Head) == 1 {
		if rec, ok := inferRename(pool.Base[0], pool.Head[0], params); ok {
			out = append(out, rec)
			return out
		}
		// Ambiguous: same parameter count but dissimilar bodies. Emit
		// nothing for the pair rather than a noisy removed+added. This
		// covers same-named identity changes too, such as a free
		// function becoming a method.
		if len(pool.Base[0].Params) == len(pool.Head[0].Params) {
			return out
		}
	}

	for _, f := range pool.Base {
		out = append(out, record(KindFunctionRemoved, SeverityHigh, params, f.Span, AnchorBase,
			f.Name, fmt.Sprintf("function %q removed", f.Name)))
	}
	for _, f := range pool.Head {
		out = append(out, record(KindFunctionAdded, SeverityMedium, params, f.Span, AnchorHead,
			f.Name, fmt.Sprintf("function %q added", f.Name)))
	}
	return out
}

func functionPtrs(fns []ast.FunctionSite) []*ast.FunctionSite {
	out := make([]*ast.FunctionSite, len(fns))
	for i := range fns {
		out[i] = &fns[i]
	}
	return out
}

// diffFunctionPair checks one identity-matched function pair.
func diffFunctionPair(base, head *ast.FunctionSite, params Params) []ChangeRecord {
	var out []ChangeRecord

	if sigDiffers(base, head) {
		rec := record(KindSignatureChanged, SeverityHigh, params, head.Span, AnchorHead,
			head.Name, fmt.Sprintf("signature changed: %q -> %q", base.Signature, head.Signature))
		rec.Context = base.Signature + " -> " + head.Signature
		out = append(out, rec)
	}

	out = append(out, diffDestructuredKeys(base, head, params)...)

	// Generic constraints are checked independently of the plain
	// signature: both records can fire for the same edit.
	if base.TypeParams != head.TypeParams {
		rec := record(KindGenericConstraintsChanged, SeverityHigh, params, head.Span, AnchorHead,
			head.Name, fmt.Sprintf("generic constraints changed: %q -> %q", base.TypeParams, head.TypeParams))
		rec.Context = base.TypeParams + " -> " + head.TypeParams
		out = append(out, rec)
	}
	return out
}

// sigDiffers compares return type plus the per-parameter
// (type, optional, rest) triples. Names and defaults are ignored.
func sigDiffers(base, head *ast.FunctionSite) bool {
	if base.ReturnType != head.ReturnType {
		return true
	}
	if len(base.Params) != len(head.Params) {
		return true
	}
	for i := range base.Params {
		b, h := base.Params[i], head.Params[i]
		if b.Type != h.Type || b.Optional != h.Optional || b.Rest != h.Rest {
			return true
		}
	}
	return false
}

// diffDestructuredKeys compares the destructured-parameter key sets:
// a removed key breaks callers passing it (high); an added key only
// widens the accepted shape (medium).
func diffDestructuredKeys(base, head *ast.FunctionSite, params Params) []ChangeRecord {
	baseKeys := keySet(base.DestructuredKeys())
	headKeys := keySet(head.DestructuredKeys())
	if len(baseKeys) == 0 && len(headKeys) == 0 {
		return nil
	}

	var out []ChangeRecord
	for _, k := range base.DestructuredKeys() {
		if !headKeys[k] {
			out = append(out, record(KindDestructuredParamRemoved, SeverityHigh, params, head.Span, AnchorHead,
				head.Name, fmt.Sprintf("destructured parameter key %q removed", k)))
		}
	}
	for _, k := range head.DestructuredKeys() {
		if !baseKeys[k] {
			out = append(out, record(KindDestructuredParamAdded, SeverityMedium, params, head.Span, AnchorHead,
				head.Name, fmt.Sprintf("destructured parameter key %q added", k)))
		}
	}
	return out
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// inferRename classifies a single removed/added pair. Body similarity
// above the threshold means a likely rename (medium); dissimilar bodies
// with differing parameter counts mean a rename with a shape change
// (high); anything else is ambiguous and yields nothing here.
func inferRename(removed, added *ast.FunctionSite, params Params) (ChangeRecord, bool) {
	sim := match.Similarity(removed.BodyText, added.BodyText)
	if sim > renameSimilarityThreshold {
		rec := record(KindFunctionLikelyRenamed, SeverityMedium, params, added.Span, AnchorHead,
			added.Name, fmt.Sprintf("function %q likely renamed to %q (body similarity %.2f)", removed.Name, added.Name, sim))
		rec.Context = removed.Name + " -> " + added.Name
		return rec, true
	}
	if len(removed.Params) != len(added.Params) {
		rec := record(KindFunctionRenameShapeChanged, SeverityHigh, params, added.Span, AnchorHead,
			added.Name, fmt.Sprintf("function %q replaced by %q with different parameter count (%d -> %d)",
				removed.Name, added.Name, len(removed.Params), len(added.Params)))
		rec.Context = removed.Name + " -> " + added.Name
		return rec, true
	}
	return ChangeRecord{}, false
}
