// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog.Logger in a context.Context so that every
// layer logs through the same handler without threading a logger parameter.
//
// Log output goes to stderr. Stdout is reserved for expanded commands and
// captured batch output, which callers may pipe elsewhere.
//
// The initial log level comes from the FANOUT_LOG_LEVEL environment variable
// (DEBUG, INFO, WARN or ERROR, case-insensitive). Anything else means WARN.
package ctxlog
