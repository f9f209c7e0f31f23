// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package envguard applies a process environment override for a bracketed
// scope and guarantees the prior state comes back on release, including
// prior absence. It exists so child-process tuning variables can wrap a
// single call without leaking across it on any exit path.
package envguard

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrEnv is returned when the process environment cannot be modified.
var ErrEnv = errors.New("environment override failed")

// Guard is an applied override. Release it with Restore; Restore is
// idempotent and safe to defer alongside explicit error-path calls.
type Guard struct {
	key      string
	prev     string
	had      bool
	restored bool
	mu       sync.Mutex
}

// Set applies key=value to the process environment and records what was
// there before.
func Set(key, value string) (*Guard, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty variable name", ErrEnv)
	}

	prev, had := os.LookupEnv(key)

	if err := os.Setenv(key, value); err != nil {
		return nil, errors.Join(ErrEnv, err)
	}

	return &Guard{key: key, prev: prev, had: had}, nil
}

// Restore puts the variable back to its prior value, or removes it if it
// was absent before Set. Subsequent calls do nothing.
func (g *Guard) Restore() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.restored {
		return nil
	}

	g.restored = true

	if !g.had {
		if err := os.Unsetenv(g.key); err != nil {
			return errors.Join(ErrEnv, err)
		}

		return nil
	}

	if err := os.Setenv(g.key, g.prev); err != nil {
		return errors.Join(ErrEnv, err)
	}

	return nil
}
