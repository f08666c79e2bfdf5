package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger() (*SimpleLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetOutput(&buf)
	logger.SetFormatFunc(DisableTimestampFormatFunc)
	return logger, &buf
}

func lines(buf *bytes.Buffer) []string {
	s := strings.TrimSpace(buf.String())
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestSimpleLoggerLevels(t *testing.T) {
	logger, buf := newTestLogger()
	logger.Debug("debug")
	logger.Info("info")
	logger.Fatal("fatal")
	assert.Equal(t, []string{"[Info] info", "[Fatal] fatal"}, lines(buf))

	buf.Reset()
	logger.SetDebug(true)
	logger.Debug("debug")
	assert.Equal(t, []string{"[Debug] debug"}, lines(buf))

	buf.Reset()
	logger.SetDebug(false)
	logger.SetQuiet(true)
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
	logger.Fatal("fatal")
	assert.Equal(t, []string{"[Warn] warn", "[Error] error", "[Fatal] fatal"}, lines(buf))

	buf.Reset()
	logger.SetQuiet(false)
	logger.Info("info")
	assert.Equal(t, []string{"[Info] info"}, lines(buf))
}

func TestSimpleLoggerAddOutput(t *testing.T) {
	logger, buf := newTestLogger()
	var file bytes.Buffer
	logger.AddOutput(&file)
	logger.Warn("twice")
	assert.Equal(t, "[Warn] twice\n", buf.String())
	assert.Equal(t, "[Warn] twice\n", file.String())
}

func TestTagContextLogger(t *testing.T) {
	logger, buf := newTestLogger()
	contextLogger := NewContextLogger(NewTagLogger(logger, "resolver"))
	ctx := AddContextTag(context.Background(), "run")
	assert.Equal(t, "run", GetContextTag(ctx))
	contextLogger.InfoContext(ctx, "lookup a.example")
	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "[Info] [resolver] [run "), line)
	assert.True(t, strings.HasSuffix(line, "ms] lookup a.example"), line)

	buf.Reset()
	contextLogger.InfoContext(context.Background(), "plain")
	assert.Equal(t, "[Info] [resolver] plain\n", buf.String())

	assert.Len(t, GetContextTag(AddContextTag(context.Background(), "")), 8)
	assert.Empty(t, GetContextTag(context.Background()))
}

func TestTagLogger(t *testing.T) {
	logger, buf := newTestLogger()
	tagLogger := NewTagLogger(NewTagLogger(logger, "backend"), "nftables")
	tagLogger.Warn("queue ", 3, " statements")
	assert.Equal(t, "[Warn] [backend] [nftables] queue 3 statements\n", buf.String())

	colorLogger, ok := tagLogger.(ColorLogger)
	assert.True(t, ok)
	assert.False(t, colorLogger.EnableColor())
	logger.SetColor(true)
	assert.True(t, colorLogger.EnableColor())
}
