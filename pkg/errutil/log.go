// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

// Package errutil provides helpers for logging and asserting on oops errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context;
// for standard errors, it logs the error string. Extra attrs are
// appended either way.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	if oopsErr, ok := oops.AsOops(err); ok {
		all := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			all = append(all, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			all = append(all, "context", ctx)
		}
		logger.Error(msg, append(all, attrs...)...)
	} else {
		logger.Error(msg, append([]any{"error", err}, attrs...)...)
	}
}
