// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/semgate/services/semgate/ast"
	"github.com/AleutianAI/semgate/services/semgate/detect"
	"github.com/AleutianAI/semgate/services/semgate/hunk"
	"github.com/AleutianAI/semgate/services/semgate/policy"
)

func wholeFileInput(records ...detect.ChangeRecord) Input {
	return Input{
		FilePath: "src/app.ts",
		Base:     &ast.StructuralModel{},
		Head:     &ast.StructuralModel{},
		Records:  records,
		Hunks:    hunk.Set{File: "src/app.ts", WholeFile: true},
	}
}

func TestAggregateDedupeKeepsHigherSeverity(t *testing.T) {
	t.Parallel()

	dup := detect.ChangeRecord{
		Kind: detect.KindCallAdded, FilePath: "src/app.ts",
		StartLine: 10, StartCol: 2, Detail: "call to \"x\" added",
	}
	low, high := dup, dup
	low.Severity = detect.SeverityLow
	high.Severity = detect.SeverityHigh

	out := Aggregate(wholeFileInput(low, high), nil)
	require.Len(t, out, 1)
	assert.Equal(t, detect.SeverityHigh, out[0].Severity)
}

func TestAggregateSortsBySeverityThenPosition(t *testing.T) {
	t.Parallel()

	recs := []detect.ChangeRecord{
		{Kind: detect.KindImportAdded, Severity: detect.SeverityLow, StartLine: 1},
		{Kind: detect.KindFunctionRemoved, Severity: detect.SeverityHigh, StartLine: 30},
		{Kind: detect.KindCallAdded, Severity: detect.SeverityMedium, StartLine: 5},
		{Kind: detect.KindSignatureChanged, Severity: detect.SeverityHigh, StartLine: 7},
	}
	out := Aggregate(wholeFileInput(recs...), nil)
	require.Len(t, out, 4)
	assert.Equal(t, detect.KindSignatureChanged, out[0].Kind)
	assert.Equal(t, detect.KindFunctionRemoved, out[1].Kind)
	assert.Equal(t, detect.KindCallAdded, out[2].Kind)
	assert.Equal(t, detect.KindImportAdded, out[3].Kind)
}

func TestAggregateHunkScoping(t *testing.T) {
	t.Parallel()

	patch := `--- a/src/app.ts
+++ b/src/app.ts
@@ -10,3 +10,4 @@
 context
+added line
-removed line
 context
`
	in := wholeFileInput(
		detect.ChangeRecord{Kind: detect.KindCallAdded, Severity: detect.SeverityMedium, StartLine: 11, Anchor: detect.AnchorHead},
		detect.ChangeRecord{Kind: detect.KindCallAdded, Severity: detect.SeverityMedium, StartLine: 90, Detail: "far away", Anchor: detect.AnchorHead},
		detect.ChangeRecord{Kind: detect.KindCallRemoved, Severity: detect.SeverityMedium, StartLine: 11, Anchor: detect.AnchorBase},
		detect.ChangeRecord{Kind: detect.KindSignatureInferred, Severity: detect.SeverityMedium, StartLine: 1, Anchor: detect.AnchorFile},
	)
	in.Hunks = hunk.Parse("src/app.ts", patch)
	require.False(t, in.Hunks.WholeFile)

	out := Aggregate(in, nil)
	kinds := make([]detect.Kind, 0, len(out))
	for _, r := range out {
		kinds = append(kinds, r.Kind)
	}
	assert.NotContains(t, out, detect.ChangeRecord{Kind: detect.KindCallAdded, Severity: detect.SeverityMedium, StartLine: 90, Detail: "far away", Anchor: detect.AnchorHead})
	assert.Contains(t, kinds, detect.KindCallRemoved)
	assert.Contains(t, kinds, detect.KindSignatureInferred)
	assert.Len(t, out, 3)
}

func TestSignatureFallbackByIdentityKey(t *testing.T) {
	t.Parallel()

	in := wholeFileInput(detect.ChangeRecord{
		Kind: detect.KindCallAdded, Severity: detect.SeverityMedium, StartLine: 3,
	})
	in.Base = &ast.StructuralModel{Partial: true, Functions: []ast.FunctionSite{
		{Name: "run", Signature: "run(a:number)"},
	}}
	in.Head = &ast.StructuralModel{Functions: []ast.FunctionSite{
		{Name: "run", Signature: "run(a:number,b:number)"},
	}}

	out := Aggregate(in, nil)
	require.Len(t, out, 2)
	assert.Equal(t, detect.KindSignatureChanged, out[0].Kind)
	assert.Equal(t, detect.SeverityHigh, out[0].Severity)
}

func TestSignatureFallbackRawTextScan(t *testing.T) {
	t.Parallel()

	in := wholeFileInput(detect.ChangeRecord{
		Kind: detect.KindCallAdded, Severity: detect.SeverityMedium, StartLine: 3,
	})
	in.Base = &ast.StructuralModel{Partial: true}
	in.Head = &ast.StructuralModel{Partial: true}
	in.BaseText = "function greet(name) { return hi(name); }"
	in.HeadText = "function greet(name, locale) { return hi(name, locale); }"

	out := Aggregate(in, nil)
	require.Len(t, out, 2)
	assert.Equal(t, detect.KindSignatureChanged, out[0].Kind)
	assert.Equal(t, "greet", out[0].NodeLabel)
}

func TestSignatureFallbackSynthetic(t *testing.T) {
	t.Parallel()

	in := wholeFileInput(detect.ChangeRecord{
		Kind: detect.KindMutationAdded, Severity: detect.SeverityMedium, StartLine: 3,
	})
	in.Base = &ast.StructuralModel{Partial: true}
	in.Head = &ast.StructuralModel{}

	out := Aggregate(in, nil)
	require.Len(t, out, 2)
	kinds := []detect.Kind{out[0].Kind, out[1].Kind}
	assert.Contains(t, kinds, detect.KindSignatureInferred)
}

func TestSignatureFallbackSkippedForHealthyModels(t *testing.T) {
	t.Parallel()

	in := wholeFileInput(detect.ChangeRecord{
		Kind: detect.KindMutationAdded, Severity: detect.SeverityMedium, StartLine: 3,
	})
	out := Aggregate(in, nil)
	require.Len(t, out, 1)
	assert.Equal(t, detect.KindMutationAdded, out[0].Kind)
}

func TestAggregateAppliesPolicy(t *testing.T) {
	t.Parallel()

	cfg := policy.DefaultConfig()
	cfg.DisabledKinds = []string{string(detect.KindImportAdded)}
	resolver, err := policy.NewResolver(cfg)
	require.NoError(t, err)

	in := wholeFileInput(
		detect.ChangeRecord{Kind: detect.KindImportAdded, Severity: detect.SeverityLow, StartLine: 1},
		detect.ChangeRecord{Kind: detect.KindCallAdded, Severity: detect.SeverityMedium, StartLine: 2},
	)
	out := Aggregate(in, resolver)
	require.Len(t, out, 1)
	assert.Equal(t, detect.KindCallAdded, out[0].Kind)
}

func TestAggregateIdempotent(t *testing.T) {
	t.Parallel()

	in := wholeFileInput(
		detect.ChangeRecord{Kind: detect.KindCallAdded, Severity: detect.SeverityMedium, StartLine: 5},
		detect.ChangeRecord{Kind: detect.KindImportAdded, Severity: detect.SeverityLow, StartLine: 1},
	)
	assert.Equal(t, Aggregate(in, nil), Aggregate(in, nil))
}
