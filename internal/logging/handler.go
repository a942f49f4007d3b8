// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

// Package logging configures the process-wide structured logger. Every
// record is stamped with the service identity and, when the context
// carries an active span, the OpenTelemetry trace and span IDs.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// stampHandler decorates a slog.Handler with service identity and trace
// correlation attributes.
type stampHandler struct {
	next    slog.Handler
	service slog.Attr
	version slog.Attr
}

func (h *stampHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := []slog.Attr{h.service, h.version}
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
	}
	if sc.HasSpanID() {
		attrs = append(attrs, slog.String("span_id", sc.SpanID().String()))
	}
	r.AddAttrs(attrs...)

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.next.Handle(ctx, r)
}

func (h *stampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *stampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stampHandler{next: h.next.WithAttrs(attrs), service: h.service, version: h.version}
}

func (h *stampHandler) WithGroup(name string) slog.Handler {
	return &stampHandler{next: h.next.WithGroup(name), service: h.service, version: h.version}
}

// Setup builds a logger writing to w, or os.Stderr when w is nil. The
// "text" format selects the text handler; anything else, including the
// empty string, gets JSON.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var base slog.Handler
	if format == "text" {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	return slog.New(&stampHandler{
		next:    base,
		service: slog.String("service", service),
		version: slog.String("version", version),
	})
}

// SetDefault installs the Setup logger as the slog default.
func SetDefault(service, version, format string) {
	slog.SetDefault(Setup(service, version, format, nil))
}
