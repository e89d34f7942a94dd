// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/shell.go
// Summary: Shell and rain-color resolution helpers.

package config

import (
	"fmt"
	"os"
)

// defaultShell resolves the user's shell from the environment.
func defaultShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

// ParseHexColor decodes a "#rrggbb" string.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	var ri, gi, bi int
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &ri, &gi, &bi); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint8(ri), uint8(gi), uint8(bi), nil
}
