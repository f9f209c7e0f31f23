// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader captures process output while it streams. A
// CaptureReader keeps a bounded copy of everything read through it plus
// the most recent complete line, so a progress display can show liveness
// without holding unbounded output in memory.
package teereader
