package log

import (
	"fmt"
)

// tagged prefixes a log line with the component tag, e.g. "[backend/nftables]".
func tagged(tag string, a []any) string {
	return fmt.Sprintf("[%s] %s", tag, fmt.Sprint(a...))
}

type tagLogger struct {
	tag string
	Logger
}

// NewTagLogger returns a Logger that prefixes every line written to
// rootLogger with tag. Components pass their own name, the resolver logs as
// "resolver" and each backend as "backend/<name>".
func NewTagLogger(rootLogger Logger, tag string) Logger {
	return &tagLogger{
		tag:    tag,
		Logger: rootLogger,
	}
}

// EnableColor reports whether the root logger writes colored output.
func (t *tagLogger) EnableColor() bool {
	if cl, ok := t.Logger.(ColorLogger); ok {
		return cl.EnableColor()
	}
	return false
}

func (t *tagLogger) Print(level Level, a ...any) {
	t.Logger.Print(level, tagged(t.tag, a))
}

func (t *tagLogger) Info(a ...any) {
	t.Print(Info, a...)
}

func (t *tagLogger) Warn(a ...any) {
	t.Print(Warn, a...)
}

func (t *tagLogger) Error(a ...any) {
	t.Print(Error, a...)
}

func (t *tagLogger) Debug(a ...any) {
	t.Print(Debug, a...)
}

func (t *tagLogger) Fatal(a ...any) {
	t.Print(Fatal, a...)
}
