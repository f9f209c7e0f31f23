// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

const ellipsis = "..."

// CaptureReader wraps an io.Reader, retaining up to limit bytes of what
// passes through and tracking the last complete line seen. It is safe for
// concurrent use: one goroutine drains Read while others poll LastLine.
type CaptureReader struct {
	reader    io.Reader
	limit     int64
	buf       bytes.Buffer
	partial   strings.Builder
	lastLine  string
	truncated bool
	mu        sync.RWMutex
}

// New returns a CaptureReader over r keeping at most limit bytes. A zero
// or negative limit disables the cap.
func New(r io.Reader, limit int64) *CaptureReader {
	return &CaptureReader{reader: r, limit: limit}
}

// Read implements io.Reader, feeding the capture as a side effect.
func (c *CaptureReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	if n > 0 {
		c.mu.Lock()
		c.store(p[:n])
		c.trackLine(string(p[:n]))
		c.mu.Unlock()
	}

	return n, err //nolint:wrapcheck
}

// Drain reads the stream to completion, discarding nothing: everything is
// captured subject to the limit. It returns the first read error other
// than io.EOF.
func (c *CaptureReader) Drain() error {
	_, err := io.Copy(io.Discard, c)
	return err //nolint:wrapcheck
}

// store appends to the bounded buffer. The write lock must be held.
func (c *CaptureReader) store(p []byte) {
	if c.limit <= 0 {
		c.buf.Write(p)
		return
	}

	remaining := c.limit - int64(c.buf.Len())
	if remaining <= 0 {
		c.truncated = true
		return
	}

	if int64(len(p)) > remaining {
		p = p[:remaining]
		c.truncated = true
	}

	c.buf.Write(p)
}

// trackLine keeps the most recent complete line across chunk boundaries.
// The write lock must be held.
func (c *CaptureReader) trackLine(chunk string) {
	c.partial.WriteString(chunk)
	combined := c.partial.String()

	idx := strings.LastIndexByte(combined, '\n')
	if idx < 0 {
		return
	}

	complete := strings.TrimRight(combined[:idx], "\r")
	if j := strings.LastIndexByte(complete, '\n'); j >= 0 {
		complete = complete[j+1:]
	}

	if complete != "" {
		c.lastLine = complete
	}

	c.partial.Reset()
	c.partial.WriteString(combined[idx+1:])
}

// Bytes returns the captured output. Call after draining completes; the
// returned slice aliases the internal buffer.
func (c *CaptureReader) Bytes() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.buf.Bytes()
}

// String returns the captured output as a string.
func (c *CaptureReader) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.buf.String()
}

// Truncated reports whether output was discarded because of the limit.
func (c *CaptureReader) Truncated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.truncated
}

// LastLine returns the most recent complete line, shortened to maxLen
// runes of text with a trailing ellipsis when positive and exceeded.
func (c *CaptureReader) LastLine(maxLen int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	line := c.lastLine
	if maxLen > len(ellipsis) && len(line) > maxLen {
		line = line[:maxLen-len(ellipsis)] + ellipsis
	}

	return line
}
