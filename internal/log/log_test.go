package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr error
	}{
		{in: "error", want: slog.LevelError},
		{in: "WARN", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "trace", wantErr: ErrUnknownLogLevel},
	}
	for _, tt := range tests {
		got, err := GetLevel(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("GetLevel(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("GetLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCreateHandlerWithStrings(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "json", level: "info", format: "json"},
		{name: "logfmt", level: "debug", format: "logfmt"},
		{name: "text", level: "warn", format: "text"},
		{name: "bad level", level: "loud", format: "json", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := CreateHandlerWithStrings(&bytes.Buffer{}, tt.level, tt.format)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil || h == nil {
				t.Fatalf("CreateHandlerWithStrings() = %v, %v", h, err)
			}
		})
	}
}

func TestJSONHandlerWritesRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(CreateHandler(&buf, slog.LevelInfo, FormatJSON))

	logger.Debug("hidden")
	logger.Info("visible", "question_id", "q-1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %s", out)
	}
	if !strings.Contains(out, `"question_id":"q-1"`) {
		t.Errorf("output = %s, want question_id attribute", out)
	}
}

func TestWithContext(t *testing.T) {
	stored := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if got := WithContext(NewContext(context.Background(), stored)); got != stored {
		t.Error("WithContext() did not return stored logger")
	}

	if got := WithContext(context.Background()); got != slog.Default() {
		t.Error("WithContext(Background) is not the default logger")
	}

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0xab, 0xcd, 0xef, 0x01, 0x23, 0x45, 0x67, 0x89, 1, 2, 3, 4, 5, 6, 7, 8},
		SpanID:  trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	WithContext(ctx).Info("traced")

	if !strings.Contains(buf.String(), `"trace_id":"abcdef01"`) {
		t.Errorf("output = %s, want 8-char trace_id", buf.String())
	}
}
