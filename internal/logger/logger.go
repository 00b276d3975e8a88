// Copyright 2026 The mdstore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger is the notification facade for the rest of the
// program.  Calls are fire-and-forget: before Init the global logger
// discards everything, so library code may log unconditionally.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config controls log output.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`   // trace, debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json, text
	Output string `yaml:"output" mapstructure:"output"` // stderr, stdout, or a file path
}

var global = zerolog.New(io.Discard)

// Init configures the global logger.
func Init(cfg Config) {
	var out io.Writer
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			out = os.Stderr
		} else {
			out = f
		}
	}

	if cfg.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	global = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Debug returns a debug-level event.
func Debug() *zerolog.Event {
	return global.Debug()
}

// Info returns an info-level event.
func Info() *zerolog.Event {
	return global.Info()
}

// Warn returns a warn-level event.
func Warn() *zerolog.Event {
	return global.Warn()
}

// Error returns an error-level event.
func Error() *zerolog.Event {
	return global.Error()
}
