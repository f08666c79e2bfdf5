package log

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
)

type Logger interface {
	Info(...any)
	Warn(...any)
	Error(...any)
	Debug(...any)
	Fatal(...any)
	Print(Level, ...any)
}

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	Fatal
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "Debug"
	case Info:
		return "Info"
	case Warn:
		return "Warn"
	case Error:
		return "Error"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

func (l Level) Color() color.Attribute {
	switch l {
	case Debug:
		return color.FgBlue
	case Info:
		return color.FgGreen
	case Warn:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

func DefaultFormatFunc(level, s string) string {
	return fmt.Sprintf("[%s] [%s] %s", time.Now().Format(time.DateTime), level, s)
}

func DisableTimestampFormatFunc(level, s string) string {
	return fmt.Sprintf("[%s] %s", level, s)
}

type ContextLogger interface {
	Logger
	InfoContext(context.Context, ...any)
	WarnContext(context.Context, ...any)
	ErrorContext(context.Context, ...any)
	DebugContext(context.Context, ...any)
	FatalContext(context.Context, ...any)
	PrintContext(context.Context, Level, ...any)
}

type ColorLogger interface {
	EnableColor() bool
}
