// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// logOutput is where per-run debug loggers write. Overridable for
// tests and embedding applications. Guarded by logMu: runs may start
// concurrently with a reconfiguration.
var (
	logMu     sync.Mutex
	logOutput io.Writer = os.Stderr
)

// SetLogOutput redirects the debug logging of subsequent runs.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	logMu.Lock()
	logOutput = w
	logMu.Unlock()
}

func logSink() io.Writer {
	logMu.Lock()
	defer logMu.Unlock()
	return logOutput
}

// runLogger builds the logger for one extraction run. Runs are silent
// unless debug is set, and never mutate global logger state.
func runLogger(debug bool) zerolog.Logger {
	if !debug {
		return zerolog.Nop()
	}
	return zerolog.New(logSink()).
		Level(zerolog.DebugLevel).
		With().Timestamp().Str("component", "extract").
		Logger()
}
