// Copyright © 2025 Rainterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: JSON configuration store for rainterm (~/.config/rainterm/rainterm.json).

package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const configName = "rainterm.json"

// Config stores configuration sections as JSON-compatible data.
type Config map[string]interface{}

// Section stores key/value pairs for a configuration section.
type Section map[string]interface{}

var (
	mu      sync.RWMutex
	once    sync.Once
	system  Config
	loadErr error

	// overridePath, when set before the first Load, replaces the default
	// config location (the -config flag).
	overridePath string
)

// SetPath overrides the config file location. Must be called before Load.
func SetPath(path string) {
	mu.Lock()
	overridePath = path
	mu.Unlock()
}

// Load returns the system configuration, reading it on first use. A missing
// file is created with defaults; a corrupt file falls back to defaults with
// a logged warning.
func Load() Config {
	once.Do(loadOnce)
	mu.RLock()
	defer mu.RUnlock()
	return system
}

// Err returns the most recent config load error.
func Err() error {
	once.Do(loadOnce)
	mu.RLock()
	defer mu.RUnlock()
	return loadErr
}

func loadOnce() {
	mu.Lock()
	defer mu.Unlock()

	path, err := configPath()
	if err != nil {
		log.Printf("Config: failed to resolve config path: %v", err)
		system = make(Config)
		applyDefaults(system)
		loadErr = err
		return
	}

	cfg, exists, readErr := readConfig(path)
	if readErr != nil {
		log.Printf("Config: failed to read %s: %v", path, readErr)
		cfg = make(Config)
		loadErr = readErr
	}
	applyDefaults(cfg)

	if !exists && readErr == nil {
		if err := writeConfig(path, cfg); err != nil {
			log.Printf("Config: failed to write default config: %v", err)
			loadErr = err
		}
	}
	system = cfg
}

func readConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(Config), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	cfg := make(Config)
	if err := json.Unmarshal(data, &cfg); err != nil {
		return make(Config), true, err
	}
	return cfg, true, nil
}

func writeConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
