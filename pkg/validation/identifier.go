// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// database keys, file paths, or subprocess environments. Using these validators
// prevents injection attacks (key-prefix collisions, command injection, path traversal).
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern matches valid rollout and run identifiers.
// Allows: letters, digits, dots, underscores, hyphens after a leading
// alphanumeric. Max length: 64 characters.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// ValidateRolloutID validates a rollout identifier before it becomes a
// history store key prefix.
//
// Valid identifiers:
//   - 1-64 characters
//   - Letters A-Z a-z, digits 0-9
//   - Dots (.), underscores (_), hyphens (-) after the first character
//
// Returns an error if the identifier is invalid.
//
// Example:
//
//	if err := validation.ValidateRolloutID(id); err != nil {
//	    return fmt.Errorf("invalid rollout id: %w", err)
//	}
//	// Safe to use as a key prefix
func ValidateRolloutID(id string) error {
	if id == "" {
		return fmt.Errorf("rollout id cannot be empty")
	}

	if strings.Contains(id, "/") {
		// A slash would collide with the store's key prefix delimiter.
		return fmt.Errorf("invalid rollout id: %q must not contain '/'", id)
	}

	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("invalid rollout id: %q (must be 1-64 alphanumeric chars, dots, underscores, or hyphens)", id)
	}

	return nil
}

// ValidateRunName validates a training run name. The name is embedded in
// the run ID, which is passed to the trainer process environment and may
// end up in checkpoint paths, so it gets the same restrictions as
// rollout identifiers.
func ValidateRunName(name string) error {
	if name == "" {
		return fmt.Errorf("run name cannot be empty")
	}

	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid run name: %q (must be 1-64 alphanumeric chars, dots, underscores, or hyphens)", name)
	}

	return nil
}
