// Package zerolog exposes a github.com/rs/zerolog logger through the glog
// contracts consumed by the ownership service.
package zerolog

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/rs/zerolog"
)

// Logger adapts a zerolog.Logger to glog.Logger and glog.FieldsLogger.
// Variadic args are read as alternating key/value pairs.
type Logger struct {
	base zerolog.Logger
}

func New(base zerolog.Logger) *Logger {
	return &Logger{base: base}
}

// NewConsole builds a human readable logger writing to out, or stdout when
// out is nil.
func NewConsole(out io.Writer, app string, level zerolog.Level) *Logger {
	if out == nil {
		out = os.Stdout
	}
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	base := zerolog.New(writer).Level(level).With().Timestamp().Str("app", app).Logger()
	return New(base)
}

// NewJSON builds a structured JSON logger writing to out.
func NewJSON(out io.Writer, app string, level zerolog.Level) *Logger {
	if out == nil {
		out = os.Stdout
	}
	base := zerolog.New(out).Level(level).With().Timestamp().Str("app", app).Logger()
	return New(base)
}

func (l *Logger) Zerolog() zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return l.base
}

func (l *Logger) Trace(msg string, args ...any) { l.log(zerolog.TraceLevel, msg, args) }
func (l *Logger) Debug(msg string, args ...any) { l.log(zerolog.DebugLevel, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(zerolog.InfoLevel, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(zerolog.WarnLevel, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(zerolog.ErrorLevel, msg, args) }

// Fatal logs at fatal level without exiting the process.
func (l *Logger) Fatal(msg string, args ...any) { l.log(zerolog.FatalLevel, msg, args) }

func (l *Logger) WithContext(ctx context.Context) glog.Logger {
	if l == nil {
		return glog.Nop()
	}
	if ctx == nil {
		return l
	}
	return &Logger{base: l.base.With().Ctx(ctx).Logger()}
}

func (l *Logger) WithFields(fields map[string]any) glog.Logger {
	if l == nil {
		return glog.Nop()
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{base: l.base.With().Fields(fields).Logger()}
}

func (l *Logger) log(level zerolog.Level, msg string, args []any) {
	if l == nil {
		return
	}
	event := l.base.WithLevel(level)
	if event == nil {
		return
	}
	for index := 0; index < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			key = fmt.Sprint(args[index])
		}
		if index+1 >= len(args) {
			event = event.Interface("!BADKEY", args[index])
			break
		}
		event = event.Interface(key, args[index+1])
	}
	event.Msg(msg)
}

// Provider hands out named children of one base logger.
type Provider struct {
	root *Logger
}

func NewProvider(root *Logger) *Provider {
	return &Provider{root: root}
}

func (p *Provider) GetLogger(name string) glog.Logger {
	if p == nil || p.root == nil {
		return glog.Nop()
	}
	if name == "" {
		return p.root
	}
	return &Logger{base: p.root.base.With().Str("logger", name).Logger()}
}

var (
	_ glog.Logger         = (*Logger)(nil)
	_ glog.FieldsLogger   = (*Logger)(nil)
	_ glog.LoggerProvider = (*Provider)(nil)
)
