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
	"log/slog"
	"runtime"

	"github.com/AleutianAI/semgate/services/semgate/ast"
)

// AnalyzerFunc is the shared analyzer contract: a pure, deterministic
// diff of two structural models.
type AnalyzerFunc func(base, head *ast.StructuralModel, params Params) []ChangeRecord

// Analyzer names one category analyzer for enablement and logging.
type Analyzer struct {
	// Name is the category identifier used in config enable/disable
	// groups ("functions", "calls", "types", ...).
	Name string

	Diff AnalyzerFunc
}

// Analyzers returns the full analyzer set in its fixed execution order.
//
// The order is part of the engine's determinism: the aggregator's sort
// breaks position ties by whatever order analyzers emitted, so the set
// is a fixed slice rather than a map.
func Analyzers() []Analyzer {
	return []Analyzer{
		{Name: "functions", Diff: DiffFunctions},
		{Name: "calls", Diff: DiffCalls},
		{Name: "hooks", Diff: DiffHooks},
		{Name: "types", Diff: DiffTypes},
		{Name: "imports", Diff: DiffImports},
		{Name: "markup", Diff: DiffMarkup},
		{Name: "mutations", Diff: DiffMutations},
		{Name: "promises", Diff: DiffPromises},
		{Name: "ternaries", Diff: DiffTernaries},
		{Name: "shapes", Diff: DiffShapes},
	}
}

// SafeDiff runs one analyzer with panic isolation: a panicking analyzer
// contributes an empty result instead of failing the file.
func SafeDiff(a Analyzer, base, head *ast.StructuralModel, params Params) (out []ChangeRecord) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			slog.Error("analyzer panicked",
				slog.String("analyzer", a.Name),
				slog.String("file", params.FilePath),
				slog.Any("panic", r),
				slog.String("stack", string(buf[:n])),
			)
			out = nil
		}
	}()
	return a.Diff(base, head, params)
}
