package cmd

import (
	"io"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// countFlag is a boolean flag that counts its occurrences, like -v -v.
type countFlag int

func (c *countFlag) String() string   { return strconv.Itoa(int(*c)) }
func (c *countFlag) IsBoolFlag() bool { return true }

func (c *countFlag) Set(s string) error {
	switch s {
	case "true":
		*c++
	case "false":
		*c = 0
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*c = countFlag(n)
	}
	return nil
}

// level returns the log level for a verbosity count.
func (c countFlag) level() zapcore.Level {
	switch {
	case c >= 2:
		return zapcore.DebugLevel
	case c == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// newLogger returns a human readable logger writing to w.
func newLogger(w io.Writer, v countFlag) *zap.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), v.level())
	return zap.New(core)
}
