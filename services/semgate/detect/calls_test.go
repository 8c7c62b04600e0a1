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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/semgate/services/semgate/ast"
)

func callModel(calls ...ast.CallSite) *ast.StructuralModel {
	return &ast.StructuralModel{FilePath: "src/app.ts", Calls: calls}
}

func TestDiffCallsOptionalChainingEquivalence(t *testing.T) {
	t.Parallel()

	// `obj?.m(1)` vs `obj.m?.(1)`: the optional-call form keeps a plain
	// `obj.m` callee, the optional-member form carries the `?.`.
	base := callModel(ast.CallSite{Callee: "obj?.m", Args: []string{"1"}})
	head := callModel(ast.CallSite{Callee: "obj.m", Args: []string{"1"}})

	assert.Empty(t, DiffCalls(base, head, testParams))
}

func TestDiffCallsBracketAccessEquivalence(t *testing.T) {
	t.Parallel()

	base := callModel(ast.CallSite{Callee: `obj["m"]`, Args: []string{"x"}})
	head := callModel(ast.CallSite{Callee: "obj.m", Args: []string{"x"}})

	assert.Empty(t, DiffCalls(base, head, testParams))
}

func TestDiffCallsSuffixPathTolerance(t *testing.T) {
	t.Parallel()

	// Renamed receiver, identical suffix and arguments: paired, no records.
	base := callModel(ast.CallSite{Callee: "oldClient.api.fetch", Args: []string{"url", "opts"}})
	head := callModel(ast.CallSite{Callee: "newClient.api.fetch", Args: []string{"url", "opts"}})

	assert.Empty(t, DiffCalls(base, head, testParams))
}

func TestDiffCallsRemovedAndAdded(t *testing.T) {
	t.Parallel()

	base := callModel(ast.CallSite{Callee: "logger.debug", Args: []string{`"x"`}})
	head := callModel(ast.CallSite{Callee: "metrics.count", Args: []string{`"x"`}})

	out := DiffCalls(base, head, testParams)
	require.Len(t, out, 2)
	assert.Equal(t, KindCallRemoved, out[0].Kind)
	assert.Equal(t, SeverityMedium, out[0].Severity)
	assert.Equal(t, KindCallAdded, out[1].Kind)
}

func TestDiffCallsArgumentOrderChanged(t *testing.T) {
	t.Parallel()

	base := callModel(ast.CallSite{Callee: "copy", Args: []string{"src", "dst"}})
	head := callModel(ast.CallSite{Callee: "copy", Args: []string{"dst", "src"}})

	out := DiffCalls(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindArgumentOrderChanged, out[0].Kind)
	assert.Equal(t, SeverityLow, out[0].Severity)
}

func TestDiffCallsTrailingUndefinedRemovalIsNoop(t *testing.T) {
	t.Parallel()

	for _, literal := range []string{"undefined", "void 0", "void(0)"} {
		base := callModel(ast.CallSite{Callee: "init", Args: []string{"cfg", literal}})
		head := callModel(ast.CallSite{Callee: "init", Args: []string{"cfg"}})
		assert.Empty(t, DiffCalls(base, head, testParams), "literal %q", literal)
	}
}

func TestDiffCallsArgumentsRemoved(t *testing.T) {
	t.Parallel()

	base := callModel(ast.CallSite{Callee: "send", Args: []string{"msg", "retries"}})
	head := callModel(ast.CallSite{Callee: "send", Args: []string{"msg"}})

	out := DiffCalls(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindArgumentsRemoved, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
}

func TestDiffCallsArgumentsAdded(t *testing.T) {
	t.Parallel()

	base := callModel(ast.CallSite{Callee: "send", Args: []string{"msg"}})
	head := callModel(ast.CallSite{Callee: "send", Args: []string{"msg", "opts"}})

	out := DiffCalls(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindArgumentsAdded, out[0].Kind)
	assert.Equal(t, SeverityMedium, out[0].Severity)
}

func TestDiffCallsConstructorFlip(t *testing.T) {
	t.Parallel()

	base := callModel(ast.CallSite{Callee: "Widget", Args: []string{"cfg"}})
	head := callModel(ast.CallSite{Callee: "Widget", Args: []string{"cfg"}, IsNew: true})

	out := DiffCalls(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindConstructorCallFlip, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
}

func TestDiffCallsTaggedTemplateChanged(t *testing.T) {
	t.Parallel()

	base := callModel(ast.CallSite{Callee: "sql", TemplateText: "`SELECT id FROM users`"})
	head := callModel(ast.CallSite{Callee: "sql", TemplateText: "`SELECT id FROM accounts`"})

	out := DiffCalls(base, head, testParams)
	require.Len(t, out, 1)
	assert.Equal(t, KindTaggedTemplateChanged, out[0].Kind)
	assert.Equal(t, SeverityMedium, out[0].Severity)
}

func TestDiffCallsHookDepsChanged(t *testing.T) {
	t.Parallel()

	base := callModel(ast.CallSite{
		Callee: "useEffect", IsHook: true, HasDeps: true,
		Deps: []string{"userId"}, Args: []string{"fn", "[userId]"},
	})
	head := callModel(ast.CallSite{
		Callee: "useEffect", IsHook: true, HasDeps: true,
		Deps: []string{"userId", "orgId"}, Args: []string{"fn", "[userId, orgId]"},
	})

	out := DiffCalls(base, head, testParams)
	require.NotEmpty(t, out)
	var found *ChangeRecord
	for i := range out {
		if out[i].Kind == KindHookDepsChanged {
			found = &out[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, SeverityHigh, found.Severity)
	assert.Equal(t, "[userId] -> [userId, orgId]", found.Context)
}

func TestDiffCallsIdempotent(t *testing.T) {
	t.Parallel()

	base := callModel(
		ast.CallSite{Callee: "a.b", Args: []string{"1"}},
		ast.CallSite{Callee: "gone", Args: nil},
	)
	head := callModel(
		ast.CallSite{Callee: "a.b", Args: []string{"1", "2"}},
		ast.CallSite{Callee: "fresh", Args: nil},
	)

	assert.Equal(t, DiffCalls(base, head, testParams), DiffCalls(base, head, testParams))
}

func TestDiffHooksAddedRemoved(t *testing.T) {
	t.Parallel()

	base := callModel(
		ast.CallSite{Callee: "useState", IsHook: true, EnclosingFunc: "App"},
		ast.CallSite{Callee: "useMemo", IsHook: true, EnclosingFunc: "App"},
	)
	head := callModel(
		ast.CallSite{Callee: "useState", IsHook: true, EnclosingFunc: "App"},
		ast.CallSite{Callee: "useCallback", IsHook: true, EnclosingFunc: "App"},
	)

	out := DiffHooks(base, head, testParams)
	require.Len(t, out, 2)
	assert.Equal(t, KindHookRemoved, out[0].Kind)
	assert.Equal(t, SeverityHigh, out[0].Severity)
	assert.Equal(t, "useMemo", out[0].NodeLabel)
	assert.Equal(t, KindHookAdded, out[1].Kind)
	assert.Equal(t, SeverityMedium, out[1].Severity)
}

func TestDiffHooksDuplicateOccurrencesPop(t *testing.T) {
	t.Parallel()

	// Two identical hook calls on both sides: fully claimed, no records.
	site := ast.CallSite{Callee: "useState", IsHook: true, EnclosingFunc: "App"}
	base := callModel(site, site)
	head := callModel(site, site)

	assert.Empty(t, DiffHooks(base, head, testParams))
}
