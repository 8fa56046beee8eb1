// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(zerolog.New(nil).Level(zerolog.WarnLevel))
	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantLevel string
	}{
		{"info", func(l *slog.Logger) { l.Info("service started") }, "info"},
		{"warn", func(l *slog.Logger) { l.Warn("service started") }, "warn"},
		{"error", func(l *slog.Logger) { l.Error("service started") }, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.log(NewSlogLogger(zerolog.New(&buf)))

			m := decodeLine(t, &buf)
			if m["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", m["level"], tt.wantLevel)
			}
			if m["message"] != "service started" {
				t.Errorf("message = %v", m["message"])
			}
		})
	}
}

func TestSlogHandler_AttributeKinds(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSlogLogger(zerolog.New(&buf))
	logger.Info("restart",
		slog.String("service", "http"),
		slog.Int("attempt", 3),
		slog.Uint64("backoff", 7),
		slog.Float64("ratio", 0.5),
		slog.Bool("terminal", false),
		slog.Duration("wait", time.Second),
		slog.Any("tags", []string{"a"}),
	)

	m := decodeLine(t, &buf)
	if m["service"] != "http" {
		t.Errorf("service = %v", m["service"])
	}
	if m["attempt"] != float64(3) {
		t.Errorf("attempt = %v", m["attempt"])
	}
	if m["terminal"] != false {
		t.Errorf("terminal = %v", m["terminal"])
	}
	if _, ok := m["tags"]; !ok {
		t.Error("missing tags")
	}
}

func TestSlogHandler_GroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSlogLogger(zerolog.New(&buf)).
		With("tree", "endless").
		WithGroup("supervisor").
		WithGroup("event")
	logger.Info("backoff", slog.Group("timer", slog.Int("ms", 15)))

	m := decodeLine(t, &buf)
	if m["tree"] != "endless" {
		t.Errorf("attr added before groups = %v, full line %s", m["tree"], buf.String())
	}
	if m["supervisor.event.timer.ms"] != float64(15) {
		t.Errorf("nested group = %v, full line %s", m["supervisor.event.timer.ms"], buf.String())
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(zerolog.Nop())
	if h.WithGroup("") != slog.Handler(h) {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewSlogLogger_WritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewSlogLogger(zerolog.New(&buf)).Info("hello")
	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Errorf("output = %s", buf.String())
	}
}
