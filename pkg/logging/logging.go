// Package logging builds the logr logger used across the server.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr. level is a zap level name
// (debug, info, error, ...); format is "text" or "json". V(1) maps to debug.
func New(level, format string) (logr.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	encoding := "console"
	switch strings.ToLower(format) {
	case "", "text":
	case "json":
		encoding = "json"
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q, valid values are: text, json", format)
	}

	ecfg := zap.NewProductionEncoderConfig()
	ecfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          encoding,
		DisableStacktrace: true,
		DisableCaller:     true,
		EncoderConfig:     ecfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	zapLog, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zapLog).WithName("data-admin"), nil
}
