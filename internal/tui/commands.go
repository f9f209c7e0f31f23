// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/fanout"
)

// WaitForEvent returns a command that delivers the next progress event,
// or StreamClosedMsg once the reporter has been closed.
func WaitForEvent(events <-chan fanout.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return StreamClosedMsg{}
		}

		return EventMsg{Event: event}
	}
}
