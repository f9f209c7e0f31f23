// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package fanout

import (
	"context"
	"sync"
	"time"
)

// Event is a real-time update emitted while a batch is prepared and run.
type Event struct {
	Type       EventType
	Message    string
	Timestamp  time.Time
	Commands   int    // number of commands in the batch
	OutputLine string // most recent output line, for EventOutput
	ExitCode   int    // aggregate exit code, for EventCompleted and EventFailed
	Err        error  // set for EventFailed
}

// EventType identifies what happened.
type EventType int

const (
	// EventExpanded indicates the command batch has been generated.
	EventExpanded EventType = iota
	// EventStarted indicates the runner has been launched.
	EventStarted
	// EventOutput indicates new runner output is available.
	EventOutput
	// EventCompleted indicates the batch finished.
	EventCompleted
	// EventFailed indicates the batch failed or could not be started.
	EventFailed
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventExpanded:
		return "expanded"
	case EventStarted:
		return "started"
	case EventOutput:
		return "output"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reporter is the sink for progress events. Implementations must not
// block: Run reports from the orchestration path.
type Reporter interface {
	// Report delivers one event. It must tolerate a receiver that is not
	// listening.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener receives progress events, e.g. an interactive display.
type Listener interface {
	// OnEvent is called for each event. Implementations should return
	// quickly to avoid backing up the reporting channel.
	OnEvent(event Event)
}

// NullReporter discards every event.
type NullReporter struct{}

// Report implements Reporter by doing nothing.
func (nr *NullReporter) Report(event Event) {}

// Close implements Reporter by doing nothing.
func (nr *NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return &NullReporter{}
}

// ChannelReporter delivers events over a buffered channel. Events are
// dropped rather than block the sender when the buffer is full or the
// reporter is closed.
type ChannelReporter struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewChannelReporter creates a ChannelReporter with the given buffer
// size. A larger buffer reduces the chance of dropped events.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report implements Reporter. It never blocks: the event is dropped when
// the reporter is closed or the channel is full.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	default:
	}
}

// Close implements Reporter. Safe to call more than once.
func (cr *ChannelReporter) Close() {
	cr.once.Do(func() {
		cr.mu.Lock()
		cr.closed = true
		cr.cancel()
		close(cr.ch)
		cr.mu.Unlock()

		cr.wg.Wait()
	})
}

// Listen forwards events to the listener from a separate goroutine until
// the reporter is closed.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for {
			select {
			case event, ok := <-cr.ch:
				if !ok {
					return
				}

				listener.OnEvent(event)
			case <-cr.ctx.Done():
				return
			}
		}
	}()
}

// Events returns the read-only event channel for callers that consume
// events directly instead of through a Listener.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}

var _ Reporter = (*NullReporter)(nil)
var _ Reporter = (*ChannelReporter)(nil)
