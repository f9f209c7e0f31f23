// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a terminal user interface for watching a batch run.
// It shows the batch phase, the command count, elapsed time and the most
// recent line of runner output, updating live from the progress event
// stream until the batch finishes or the user cancels.
package tui
