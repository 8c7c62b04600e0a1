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

// DiffPromises compares promise-usage sites.
//
// Sites are bucketed by usage kind, subject, and enclosing function.
// A removed catch or finally is high: rejections that were handled no
// longer are. Other removals and all additions are medium.
func DiffPromises(base, head *ast.StructuralModel, params Params) []ChangeRecord {
	var out []ChangeRecord

	_, pool := match.PairByUniqueKey(
		promisePtrs(base.Promises), promisePtrs(head.Promises),
		promiseKey,
	)
	_, pool = match.PairWhere(pool, func(b, h *ast.PromiseSite) bool {
		return promiseKey(b) == promiseKey(h)
	})

	for _, p := range pool.Base {
		kind, sev := KindPromiseRemoved, SeverityMedium
		if p.Kind == ast.PromiseCatch || p.Kind == ast.PromiseFinally {
			kind, sev = KindErrorHandlingRemoved, SeverityHigh
		}
		out = append(out, record(kind, sev, params, p.Span, AnchorBase,
			p.Subject, fmt.Sprintf("promise %s on %q removed", p.Kind, p.Subject)))
	}
	for _, p := range pool.Head {
		out = append(out, record(KindPromiseAdded, SeverityMedium, params, p.Span, AnchorHead,
			p.Subject, fmt.Sprintf("promise %s on %q added", p.Kind, p.Subject)))
	}
	return out
}

func promisePtrs(sites []ast.PromiseSite) []*ast.PromiseSite {
	out := make([]*ast.PromiseSite, len(sites))
	for i := range sites {
		out[i] = &sites[i]
	}
	return out
}

func promiseKey(p *ast.PromiseSite) string {
	return p.Kind.String() + "|" + match.NormalizePath(p.Subject) + "|" + p.EnclosingFunc
}
