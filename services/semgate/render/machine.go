// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/AleutianAI/semgate/services/semgate/detect"
	"github.com/AleutianAI/semgate/services/semgate/orchestrate"
)

// jsonFile is the per-file JSON shape.
type jsonFile struct {
	FilePath      string                `json:"file_path"`
	Status        string                `json:"status"`
	TestsRequired bool                  `json:"tests_required"`
	Changes       []detect.ChangeRecord `json:"changes,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// jsonRun is the top-level JSON shape.
type jsonRun struct {
	Files         []jsonFile `json:"files"`
	TestsRequired bool       `json:"tests_required"`
	ErrorCount    int        `json:"error_count"`
}

// JSON dumps the full run result.
func JSON(w io.Writer, run Run) error {
	out := jsonRun{
		Files:         make([]jsonFile, 0, len(run.Results)),
		TestsRequired: run.TestsRequired,
		ErrorCount:    run.ErrorCount,
	}
	for _, res := range run.Results {
		out.Files = append(out.Files, jsonFile{
			FilePath:      res.FilePath,
			Status:        res.Status.String(),
			TestsRequired: res.TestsRequired,
			Changes:       res.Changes,
			Error:         res.Error,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Lines emits one colon-delimited record per line:
//
//	file:line:col:severity:kind:detail
//
// Colons inside the detail are preserved; parsers should split at most
// five times. Task errors become file:0:0:error::message lines.
func Lines(w io.Writer, run Run) error {
	for _, res := range run.Results {
		if res.Status == orchestrate.StatusError {
			if _, err := fmt.Fprintf(w, "%s:0:0:error::%s\n", res.FilePath, sanitizeLine(res.Error)); err != nil {
				return err
			}
			continue
		}
		for _, rec := range res.Changes {
			if _, err := fmt.Fprintf(w, "%s:%d:%d:%s:%s:%s\n",
				rec.FilePath, rec.StartLine, rec.StartCol, rec.Severity, rec.Kind, sanitizeLine(rec.Detail)); err != nil {
				return err
			}
		}
	}
	return nil
}

func sanitizeLine(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " ")
}

// GitHub emits workflow inline annotations: high severity as errors,
// medium as warnings, low as notices.
func GitHub(w io.Writer, run Run) error {
	for _, res := range run.Results {
		if res.Status == orchestrate.StatusError {
			if _, err := fmt.Fprintf(w, "::error file=%s::%s\n", res.FilePath, sanitizeLine(res.Error)); err != nil {
				return err
			}
			continue
		}
		for _, rec := range res.Changes {
			level := "notice"
			switch rec.Severity {
			case detect.SeverityHigh:
				level = "error"
			case detect.SeverityMedium:
				level = "warning"
			}
			if _, err := fmt.Fprintf(w, "::%s file=%s,line=%d,col=%d::[%s] %s\n",
				level, rec.FilePath, rec.StartLine, rec.StartCol, rec.Kind, sanitizeLine(rec.Detail)); err != nil {
				return err
			}
		}
	}
	return nil
}
