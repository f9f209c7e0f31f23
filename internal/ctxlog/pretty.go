// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/fanout/internal/color"
)

var (
	// ErrMarshalAttrs is returned when log attributes cannot be marshaled.
	ErrMarshalAttrs = errors.New("cannot marshal log attributes")
	// ErrWriteOutput is returned when the log line cannot be written.
	ErrWriteOutput = errors.New("cannot write log output")
)

// TimeFormat is the format used for timestamps in log messages.
const TimeFormat = "[15:04:05.000]"

const jsonIndent = 2

// PrettyHandler formats log records for the console: a timestamp, a
// colored level tag, the message and the remaining attributes as
// indented JSON.
type PrettyHandler struct {
	inner            slog.Handler
	replace          func([]string, slog.Attr) slog.Attr
	buf              *bytes.Buffer
	mu               *sync.Mutex
	writer           io.Writer
	formatter        *colorjson.Formatter
	color            bool
	outputEmptyAttrs bool
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// WithAttrs returns a handler whose records carry the given attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)

	return &clone
}

// WithGroup returns a handler that starts a group with the given name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithGroup(name)

	return &clone
}

// recordAttrs runs the record through the inner JSON handler and decodes
// the result, leaving only the non-standard attributes.
func (h *PrettyHandler) recordAttrs(ctx context.Context, r slog.Record) (map[string]any, error) {
	h.mu.Lock()
	defer func() {
		h.buf.Reset()
		h.mu.Unlock()
	}()

	if err := h.inner.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("inner handler: %w", err)
	}

	var attrs map[string]any
	if err := json.Unmarshal(h.buf.Bytes(), &attrs); err != nil {
		return nil, fmt.Errorf("decode inner handler output: %w", err)
	}

	return attrs, nil
}

func (h *PrettyHandler) colorize(str string, codes ...color.Code) string {
	if !h.color {
		return str
	}

	return color.Sprint(str, codes...)
}

func (h *PrettyHandler) levelTag(r slog.Record) string {
	attr := slog.Attr{
		Key:   slog.LevelKey,
		Value: slog.AnyValue(r.Level),
	}
	if h.replace != nil {
		attr = h.replace([]string{}, attr)
	}

	if attr.Equal(slog.Attr{}) {
		return ""
	}

	tag := attr.Value.String() + ":"

	switch {
	case r.Level < slog.LevelInfo:
		return h.colorize(tag, color.Faint)
	case r.Level < slog.LevelWarn:
		return h.colorize(tag, color.FgCyan)
	case r.Level < slog.LevelError:
		return h.colorize(tag, color.FgYellow)
	default:
		return h.colorize(tag, color.Bold, color.FgRed)
	}
}

// Handle implements the slog.Handler interface for PrettyHandler.
func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	level := h.levelTag(r)

	var timestamp string

	timeAttr := slog.Attr{
		Key:   slog.TimeKey,
		Value: slog.StringValue(r.Time.Format(TimeFormat)),
	}
	if h.replace != nil {
		timeAttr = h.replace([]string{}, timeAttr)
	}

	if !timeAttr.Equal(slog.Attr{}) {
		timestamp = h.colorize(timeAttr.Value.String(), color.Faint)
	}

	var msg string

	msgAttr := slog.Attr{
		Key:   slog.MessageKey,
		Value: slog.StringValue(r.Message),
	}
	if h.replace != nil {
		msgAttr = h.replace([]string{}, msgAttr)
	}

	if !msgAttr.Equal(slog.Attr{}) {
		msg = h.colorize(msgAttr.Value.String(), color.FgHiWhite)
	}

	attrs, err := h.recordAttrs(ctx, r)
	if err != nil {
		return err
	}

	var attrsAsBytes []byte

	if h.outputEmptyAttrs || len(attrs) > 0 {
		attrsAsBytes, err = h.formatter.Marshal(attrs)
		if err != nil {
			return errors.Join(ErrMarshalAttrs, err)
		}
	}

	out := strings.Builder{}

	for _, part := range []string{timestamp, level, msg} {
		if len(part) > 0 {
			out.WriteString(part)
			out.WriteString(" ")
		}
	}

	if len(attrsAsBytes) > 0 {
		out.WriteString(string(attrsAsBytes))
	}

	out.WriteString("\n")

	if _, err := io.WriteString(h.writer, out.String()); err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	return nil
}

// suppressStandard removes the time, level and message attributes so the
// inner JSON handler emits only the user attributes.
func suppressStandard(next func([]string, slog.Attr) slog.Attr,
) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey ||
			a.Key == slog.LevelKey ||
			a.Key == slog.MessageKey {
			return slog.Attr{}
		}

		if next == nil {
			return a
		}

		return next(groups, a)
	}
}

// NewPretty creates a new PrettyHandler with the given options.
func NewPretty(handlerOptions *slog.HandlerOptions, options ...Option) *PrettyHandler {
	if handlerOptions == nil {
		handlerOptions = &slog.HandlerOptions{}
	}

	buf := &bytes.Buffer{}
	handler := &PrettyHandler{
		buf: buf,
		inner: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       handlerOptions.Level,
			AddSource:   handlerOptions.AddSource,
			ReplaceAttr: suppressStandard(handlerOptions.ReplaceAttr),
		}),
		replace:   handlerOptions.ReplaceAttr,
		mu:        &sync.Mutex{},
		writer:    io.Discard,
		formatter: colorjson.NewFormatter(),
	}
	handler.formatter.Indent = jsonIndent

	for _, opt := range options {
		opt(handler)
	}

	handler.formatter.DisabledColor = !handler.color

	return handler
}

// Option implements a functional options pattern for PrettyHandler.
type Option func(h *PrettyHandler)

// WithDestinationWriter sets the destination writer for the PrettyHandler.
func WithDestinationWriter(writer io.Writer) Option {
	return func(h *PrettyHandler) {
		h.writer = writer
	}
}

// WithColor enables color output when the terminal supports it.
func WithColor() Option {
	return func(h *PrettyHandler) {
		h.color = color.Enabled()
	}
}

// WithForcedColor enables color output regardless of terminal support.
// Used by tests that assert on escape sequences.
func WithForcedColor() Option {
	return func(h *PrettyHandler) {
		h.color = true
	}
}

// WithOutputEmptyAttrs emits an empty JSON object when a record has no
// attributes, instead of omitting the attribute section.
func WithOutputEmptyAttrs() Option {
	return func(h *PrettyHandler) {
		h.outputEmptyAttrs = true
	}
}
