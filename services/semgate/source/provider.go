// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package source retrieves file content and patches for a given
// reference: the working copy via the filesystem, or a historical
// revision via git.
//
// Providers are injected dependencies, never globals: the orchestrator
// takes a Provider and tests substitute their own.
package source

import "context"

// WorkingRef is the sentinel reference meaning "the working copy":
// content is read from the filesystem rather than version control.
const WorkingRef = "WORKING"

// Provider retrieves file content and unified-diff patches.
//
// Content returns nil with a nil error when the file does not exist at
// the given ref; non-existence is data (file added or deleted), not an
// error.
type Provider interface {
	// Content returns the file bytes at ref, or nil when absent.
	Content(ctx context.Context, path, ref string) ([]byte, error)

	// Patch returns unified-diff text for the file between two refs, or
	// "" when no patch is available (callers fall back to whole-file
	// hunks).
	Patch(ctx context.Context, path, baseRef, headRef string) (string, error)
}
