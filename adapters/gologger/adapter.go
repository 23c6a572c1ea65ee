package gologger

import (
	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// Named resolves the logger for name and attaches a component field when the
// resolved logger supports fields.
func Named(name string, provider glog.LoggerProvider, logger glog.Logger) glog.Logger {
	_, resolved := Resolve(name, provider, logger)
	resolved = glog.Ensure(resolved)
	if fields, ok := resolved.(glog.FieldsLogger); ok && name != "" {
		return fields.WithFields(map[string]any{"component": name})
	}
	return resolved
}
