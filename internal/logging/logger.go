// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ktx2

// Package logging builds the hclog loggers used by the ktx command.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Environment variables read by the logger.
const (
	EnvLogLevel = "KTX_LOG_LEVEL"
	EnvJSONLog  = "KTX_JSON_LOG"
)

// DefaultLevel is used when neither a flag nor KTX_LOG_LEVEL sets one.
const DefaultLevel = "warn"

// NewLogger creates an hclog logger writing to output, stderr when nil.
// KTX_JSON_LOG=1 switches to JSON lines; text lines get a "ktx: " prefix.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(EnvJSONLog) == "1"
	if !jsonFormat {
		output = NewPrefixWriter("ktx: ", output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// LogLevel returns the level from KTX_LOG_LEVEL, or DefaultLevel.
func LogLevel() string {
	if level := os.Getenv(EnvLogLevel); level != "" {
		return level
	}

	return DefaultLevel
}
