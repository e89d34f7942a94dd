// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for the rainterm configuration file.

package config

func applyDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("term", Section{
		"shell":           defaultShell(),
		"history_enabled": true,
	})
	cfg.RegisterDefaults("rain", Section{
		"enabled":        true,
		"tick_ms":        40,
		"cooldown_ticks": 4,
		"burst_min":      2,
		"burst_max":      9,
		"gap_min":        2,
		"gap_max":        7,
		"bold_chance":    0.2,
		"color":          "#00ff00",
	})
	cfg.RegisterDefaults("view", Section{
		"highlight_style": "catppuccin-mocha",
	})
}
