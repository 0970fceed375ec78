// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the typed error the loader surfaces when a route file
// fails validation. Keeping it a struct lets the module loader report which
// file and block broke without string matching.
package route

import "fmt"

// ConfigError describes one invalid block in a route file.
type ConfigError struct {
	// File is the .hcl file the block came from.
	File string
	// Block identifies the block, e.g. `command "warn"`.
	Block string
	// Err is the underlying validation failure.
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.File, e.Block, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
