// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package source

import "errors"

var (
	// ErrGitUnavailable is returned when the git binary cannot be run.
	ErrGitUnavailable = errors.New("git executable unavailable")

	// ErrRepoPath is returned for a non-absolute repository path.
	ErrRepoPath = errors.New("repository path must be absolute")

	// ErrHistoricalRef is returned by the filesystem provider for any
	// ref other than the working copy.
	ErrHistoricalRef = errors.New("filesystem provider cannot read historical refs")
)
