// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color applies ANSI text formatting when the terminal supports
// it. NO_COLOR always wins, FORCE_COLOR overrides terminal detection.
package color
