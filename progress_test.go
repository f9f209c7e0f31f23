// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package fanout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventExpanded, "expanded"},
		{EventStarted, "started"},
		{EventOutput, "output"},
		{EventCompleted, "completed"},
		{EventFailed, "failed"},
		{EventType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.eventType.String())
		})
	}
}

func TestNullReporter(t *testing.T) {
	reporter := NewNullReporter()
	require.NotNil(t, reporter)

	// Must not panic.
	reporter.Report(Event{Type: EventStarted, Timestamp: time.Now()})
	reporter.Close()
	reporter.Report(Event{Type: EventCompleted})
}

func TestChannelReporterDeliversEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 4)

	reporter.Report(Event{Type: EventStarted, Commands: 3})
	reporter.Report(Event{Type: EventCompleted, ExitCode: 0})
	reporter.Close()

	var got []EventType
	for event := range reporter.Events() {
		got = append(got, event.Type)
	}

	assert.Equal(t, []EventType{EventStarted, EventCompleted}, got)
}

func TestChannelReporterDropsWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 1)

	reporter.Report(Event{Type: EventStarted})
	reporter.Report(Event{Type: EventOutput})
	reporter.Report(Event{Type: EventOutput})
	reporter.Close()

	var got []Event
	for event := range reporter.Events() {
		got = append(got, event)
	}

	require.Len(t, got, 1, "a full buffer must drop events instead of blocking")
	assert.Equal(t, EventStarted, got[0].Type)
}

func TestChannelReporterReportAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 4)
	reporter.Close()

	// Must not panic on a closed reporter.
	reporter.Report(Event{Type: EventOutput})
	reporter.Close()
}

type recordingListener struct {
	mu     sync.Mutex
	events []Event
}

func (rl *recordingListener) OnEvent(event Event) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.events = append(rl.events, event)
}

func (rl *recordingListener) snapshot() []Event {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return append([]Event(nil), rl.events...)
}

func TestChannelReporterListen(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 8)
	listener := &recordingListener{}

	reporter.Listen(listener)

	reporter.Report(Event{Type: EventStarted})
	reporter.Report(Event{Type: EventOutput, OutputLine: "working"})

	assert.Eventually(t, func() bool {
		return len(listener.snapshot()) == 2
	}, time.Second, 10*time.Millisecond, "listener must receive reported events")

	reporter.Close()

	events := listener.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, "working", events[1].OutputLine)
}

func TestChannelReporterConcurrentReportAndClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 2)

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				reporter.Report(Event{Type: EventOutput})
			}
		}()
	}

	reporter.Close()
	wg.Wait()

	for range reporter.Events() {
		// drain
	}
}
