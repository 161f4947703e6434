// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over the go-ethereum slog based logger.
// Package level loggers are created once with WithContext and always write
// through the current root handler, so they may be declared as package vars.
package log

import (
	"io"
	"log/slog"
	"slices"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Legacy verbosity levels, as accepted by the --verbosity flag.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// Logger writes structured records as alternating key/value pairs.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	With(ctx ...any) Logger
}

type logger struct {
	ctx []any
}

func (l *logger) root() ethlog.Logger {
	if len(l.ctx) == 0 {
		return ethlog.Root()
	}
	return ethlog.Root().With(l.ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...any)  { l.root().Crit(msg, ctx...) }

func (l *logger) With(ctx ...any) Logger {
	return &logger{ctx: slices.Concat(l.ctx, ctx)}
}

// WithContext returns a logger that prefixes every record with ctx.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: slices.Clone(ctx)}
}

// Root returns the logger without extra context.
func Root() Logger {
	return &logger{}
}

// FromLegacyLevel maps a 0-9 verbosity onto a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	return ethlog.FromLegacyLevel(lvl)
}

// NewHandler builds the terminal handler, or a JSON one when asJSON is set.
func NewHandler(w io.Writer, level slog.Level, asJSON, useColor bool) slog.Handler {
	if asJSON {
		return ethlog.JSONHandlerWithLevel(w, level)
	}
	return ethlog.NewTerminalHandlerWithLevel(w, level, useColor)
}

// SetHandler routes all loggers to h and returns a func restoring the previous root.
func SetHandler(h slog.Handler) (restore func()) {
	old := ethlog.Root()
	ethlog.SetDefault(ethlog.NewLogger(h))
	return func() { ethlog.SetDefault(old) }
}
