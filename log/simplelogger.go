package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var DefaultSimpleLogger Logger

func init() {
	l := NewLogger()
	l.SetOutput(os.Stderr)
	l.SetFormatFunc(DisableTimestampFormatFunc)
	DefaultSimpleLogger = l
}

type SimpleLogger struct {
	lock       sync.Mutex
	output     io.Writer
	formatFunc func(level, s string) string
	level      Level
	color      bool
}

func NewLogger() *SimpleLogger {
	s := &SimpleLogger{
		output:     os.Stdout,
		formatFunc: DefaultFormatFunc,
		level:      Info,
	}
	return s
}

func (s *SimpleLogger) SetOutput(w io.Writer) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if w != nil {
		s.output = w
	} else {
		s.output = io.Discard
	}
}

// AddOutput duplicates every line to w in addition to the current output.
func (s *SimpleLogger) AddOutput(w io.Writer) {
	if w == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.output = io.MultiWriter(s.output, w)
}

func (s *SimpleLogger) SetFormatFunc(f func(level, s string) string) {
	if f != nil {
		s.formatFunc = f
	}
}

func (s *SimpleLogger) SetLevel(level Level) {
	s.level = level
}

func (s *SimpleLogger) SetDebug(debug bool) {
	if debug {
		s.level = Debug
	} else if s.level == Debug {
		s.level = Info
	}
}

// SetQuiet drops Debug and Info lines; Warn and above are always printed.
func (s *SimpleLogger) SetQuiet(quiet bool) {
	if quiet {
		s.level = Warn
	} else if s.level > Info {
		s.level = Info
	}
}

func (s *SimpleLogger) SetColor(color bool) {
	s.color = color
}

func (s *SimpleLogger) EnableColor() bool {
	return s.color
}

func (s *SimpleLogger) print(level Level, str string) {
	if level < s.level {
		return
	}
	str = strings.TrimSpace(str)
	levelStr := level.String()
	if s.color {
		levelStr = GetColor(level.Color()).Sprint(levelStr)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	fmt.Fprintln(s.output, s.formatFunc(levelStr, str))
}

func (s *SimpleLogger) Print(level Level, a ...any) {
	s.print(level, fmt.Sprint(a...))
}

func (s *SimpleLogger) Info(a ...any) {
	s.print(Info, fmt.Sprint(a...))
}

func (s *SimpleLogger) Warn(a ...any) {
	s.print(Warn, fmt.Sprint(a...))
}

func (s *SimpleLogger) Error(a ...any) {
	s.print(Error, fmt.Sprint(a...))
}

func (s *SimpleLogger) Debug(a ...any) {
	s.print(Debug, fmt.Sprint(a...))
}

func (s *SimpleLogger) Fatal(a ...any) {
	s.print(Fatal, fmt.Sprint(a...))
}
