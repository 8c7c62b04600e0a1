// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy

import "errors"

var (
	// ErrConfigRead is returned when the config file cannot be read.
	ErrConfigRead = errors.New("failed to read config file")

	// ErrConfigParse is returned when the config file is not valid YAML.
	ErrConfigParse = errors.New("failed to parse config file")

	// ErrBadOverride is returned for a severity override naming an
	// unknown kind or severity.
	ErrBadOverride = errors.New("invalid severity override")
)
