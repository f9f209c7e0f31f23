// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import "github.com/matt-FFFFFF/fanout"

// EventMsg wraps a progress event for the tea framework.
type EventMsg struct {
	Event fanout.Event
}

// StreamClosedMsg is sent when the progress event stream has ended.
type StreamClosedMsg struct{}
