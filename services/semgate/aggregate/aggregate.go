// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package aggregate merges analyzer outputs into the final per-file
// record list: deduplicated, scoped to the edited hunks, escalated when
// parse degradation hid a signature change, and sorted by severity.
package aggregate

import (
	"sort"

	"github.com/AleutianAI/semgate/services/semgate/ast"
	"github.com/AleutianAI/semgate/services/semgate/detect"
	"github.com/AleutianAI/semgate/services/semgate/hunk"
	"github.com/AleutianAI/semgate/services/semgate/policy"
)

// Input is everything the aggregator needs for one file diff.
type Input struct {
	FilePath string

	Base *ast.StructuralModel
	Head *ast.StructuralModel

	// BaseText and HeadText are the raw sources, used only by the
	// last-resort raw-text signature scan.
	BaseText string
	HeadText string

	// Records is the concatenated analyzer output.
	Records []detect.ChangeRecord

	Hunks hunk.Set
}

// Aggregate produces the final record list for one file.
//
// Pipeline: dedupe, hunk scoping, signature-change fallback, policy
// severity/disable application, severity-descending sort. Records are
// merged, never edited in place; the input slice is not modified.
func Aggregate(in Input, resolver *policy.Resolver) []detect.ChangeRecord {
	records := dedupe(in.Records)
	records = scope(records, in.Hunks)
	records = append(records, signatureFallback(in, records)...)
	if resolver != nil {
		records = resolver.Apply(records)
	}
	sortRecords(records)
	return records
}

// dedupeKey collides records the way the gate considers them identical.
type dedupeKey struct {
	file   string
	kind   detect.Kind
	line   int
	col    int
	detail string
}

// dedupe drops duplicate records, keeping the higher-severity one. The
// survivor keeps the position of its first occurrence in analyzer order.
func dedupe(records []detect.ChangeRecord) []detect.ChangeRecord {
	index := make(map[dedupeKey]int, len(records))
	out := make([]detect.ChangeRecord, 0, len(records))

	for _, rec := range records {
		key := dedupeKey{rec.FilePath, rec.Kind, rec.StartLine, rec.StartCol, rec.Detail}
		if at, ok := index[key]; ok {
			if rec.Severity > out[at].Severity {
				out[at] = rec
			}
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}

// scope drops records outside the edited regions. Head-anchored records
// must fall inside a head range, base-anchored inside a base range;
// whole-file records always survive.
func scope(records []detect.ChangeRecord, hunks hunk.Set) []detect.ChangeRecord {
	if hunks.WholeFile {
		return records
	}
	out := make([]detect.ChangeRecord, 0, len(records))
	for _, rec := range records {
		switch rec.Anchor {
		case detect.AnchorHead:
			if hunks.KeepsHead(rec.StartLine) {
				out = append(out, rec)
			}
		case detect.AnchorBase:
			if hunks.KeepsBase(rec.StartLine) {
				out = append(out, rec)
			}
		default:
			out = append(out, rec)
		}
	}
	return out
}

// sortRecords orders by severity descending, then position ascending.
// The sort is stable so analyzer emission order breaks remaining ties.
func sortRecords(records []detect.ChangeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Severity != records[j].Severity {
			return records[i].Severity > records[j].Severity
		}
		if records[i].StartLine != records[j].StartLine {
			return records[i].StartLine < records[j].StartLine
		}
		return records[i].StartCol < records[j].StartCol
	})
}
