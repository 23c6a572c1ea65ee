package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestResolveDeterministicFallback(t *testing.T) {
	loggerOnly := &capturingLogger{id: "logger"}
	providerLogger := &capturingLogger{id: "provider"}
	provider := &capturingProvider{logger: providerLogger}

	var resolvedProvider glog.LoggerProvider
	_, resolved := Resolve("ownership", provider, loggerOnly)
	got := resolved.(*capturingLogger)
	if got.id != "provider" {
		t.Fatalf("expected provider logger precedence, got %q", got.id)
	}

	resolvedProvider, resolved = Resolve("ownership", nil, loggerOnly)
	got = resolved.(*capturingLogger)
	if got.id != "logger" {
		t.Fatalf("expected direct logger when provider is nil, got %q", got.id)
	}
	if resolvedProvider == nil {
		t.Fatalf("expected provider wrapper from logger")
	}

	_, resolved = Resolve("ownership", nil, nil)
	if resolved == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestNamedAttachesComponentField(t *testing.T) {
	base := &capturingLogger{id: "base"}
	named := Named("ownerctl", nil, base)
	got, ok := named.(*capturingLogger)
	if !ok {
		t.Fatalf("expected capturing logger, got %T", named)
	}
	if got.fields["component"] != "ownerctl" {
		t.Fatalf("expected component field, got %+v", got.fields)
	}

	named.Info("hello", "k", "v")
	if got.lastInfo.msg != "hello" || got.lastInfo.args[0] != "k" {
		t.Fatalf("expected info to reach named logger, got %+v", got.lastInfo)
	}

	if Named("ownerctl", nil, nil) == nil {
		t.Fatalf("expected nop fallback")
	}
}

var (
	_ glog.Logger         = (*capturingLogger)(nil)
	_ glog.FieldsLogger   = (*capturingLogger)(nil)
	_ glog.LoggerProvider = (*capturingProvider)(nil)
)

type capturingProvider struct {
	logger *capturingLogger
}

func (p *capturingProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type infoCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	id       string
	fields   map[string]any
	lastInfo infoCall
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Debug(string, ...any) {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}
func (l *capturingLogger) Fatal(string, ...any) {}

func (l *capturingLogger) Info(msg string, args ...any) {
	l.lastInfo = infoCall{
		msg:  msg,
		args: append([]any(nil), args...),
	}
}

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}

func (l *capturingLogger) WithFields(fields map[string]any) glog.Logger {
	merged := map[string]any{}
	for key, value := range l.fields {
		merged[key] = value
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &capturingLogger{id: l.id, fields: merged}
}
