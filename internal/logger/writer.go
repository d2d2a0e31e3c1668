package logger

import (
	"bytes"
	"context"
	"sync"

	"go.uber.org/zap/zapcore"
)

// LineWriter is an io.Writer that logs every complete line it receives.
// External tools write their output through it so that it ends up in the
// same structured log as the rest of the run.
type LineWriter struct {
	// ctx carries the scoped logger.
	ctx context.Context //nolint:containedctx // The writer is bound to one tool invocation.
	// level is the level lines are logged at.
	level zapcore.Level
	// buf keeps the trailing partial line between writes.
	buf bytes.Buffer
	// mu serializes writes; exec copies stdout and stderr from separate goroutines.
	mu sync.Mutex
}

// NewLineWriter returns a LineWriter logging at the provided level.
func NewLineWriter(ctx context.Context, level zapcore.Level) *LineWriter {
	return &LineWriter{
		ctx:   ctx,
		level: level,
	}
}

// Write buffers p and logs each complete line.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)

	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Incomplete line, keep it for the next write.
			w.buf.Write(line)

			break
		}

		w.log(line)
	}

	return len(p), nil
}

// Flush logs whatever partial line is still buffered.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return
	}

	w.log(w.buf.Bytes())
	w.buf.Reset()
}

func (w *LineWriter) log(line []byte) {
	text := string(bytes.TrimRight(line, "\r\n"))
	if text == "" {
		return
	}

	l := FromContext(w.ctx)

	switch {
	case w.level >= zapcore.ErrorLevel:
		l.Error(text)
	case w.level == zapcore.WarnLevel:
		l.Warn(text)
	case w.level == zapcore.InfoLevel:
		l.Info(text)
	default:
		l.Debug(text)
	}
}
