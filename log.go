// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import (
	"log"
	"os"
)

// Logger is the diagnostics sink a [FlowGraph] reports fatal runner errors
// to, through Errorf. FlowGraph does not call Infof and does not report
// other lifecycle events. It stands in for
// original_source/desktop_logger's start_logging/ZF_LOGI role, scaled
// down to the events a flowgraph itself originates; a block's own
// Procedure is free to log through any means it likes.
type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything. It is the default for a [FlowGraph]
// constructed without an explicit Logger.
type NopLogger struct{}

func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// StdLogger adapts the standard library's [log.Logger] to [Logger].
type StdLogger struct {
	l *log.Logger
}

// NewStdLogger wraps a standard library logger writing to os.Stderr with
// cler's default prefix and flags, matching the teacher's own choice not
// to pull in a structured-logging dependency for its own diagnostics.
func NewStdLogger() *StdLogger {
	return &StdLogger{l: log.New(os.Stderr, "cler: ", log.LstdFlags)}
}

func (s *StdLogger) Infof(format string, args ...any) {
	s.l.Printf("INFO "+format, args...)
}

func (s *StdLogger) Errorf(format string, args ...any) {
	s.l.Printf("ERROR "+format, args...)
}
