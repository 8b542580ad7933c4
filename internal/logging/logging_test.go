package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chartline-trader/internal/models"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLogRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger := WithSource(zerolog.New(&buf), "chart.png")
	run := &models.Run{ID: "run-1", Source: "chart.png", CandleCount: 40, PendingCount: 2,
		Contracts: make([]models.ContractView, 3)}

	LogRun(logger, run, 1500*time.Millisecond)

	m := decode(t, &buf)
	if m["event"] != "run" || m["run_id"] != "run-1" || m["source"] != "chart.png" {
		t.Errorf("fields = %v", m)
	}
	if m["contracts"] != float64(3) || m["pending"] != float64(2) || m["candles"] != float64(40) {
		t.Errorf("counts = %v", m)
	}
}

func TestLogDiagnosticIsDebug(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	logger := WithSource(zerolog.New(&buf).Level(zerolog.InfoLevel), "a.png")
	d := models.NewDiagnostic("breakout", "PH9->PH7", errors.New("no breakout"))

	LogDiagnostic(logger, d)
	if buf.Len() != 0 {
		t.Errorf("diagnostics should not appear at info level: %s", buf.String())
	}

	LogDiagnostic(logger.Level(zerolog.DebugLevel), d)
	m := decode(t, &buf)
	if m["level"] != "debug" || m["subject"] != "PH9->PH7" || m["stage"] != "breakout" {
		t.Errorf("fields = %v", m)
	}
}

func TestLogContract(t *testing.T) {
	var buf bytes.Buffer
	LogContract(WithRun(zerolog.New(&buf), "run-2"), models.ContractView{
		Type:     models.PlToPl,
		Sender:   models.SenderView{ArrowNumber: 8},
		Receiver: models.ReceiverView{ArrowNumber: 5, OrderType: models.OrderShort, BreakoutParent: "PL3", OrderParent: "PH4"},
	})

	m := decode(t, &buf)
	if m["run_id"] != "run-2" || m["order_type"] != "SHORT" || m["order_parent"] != "PH4" || m["receiver"] != float64(5) {
		t.Errorf("fields = %v", m)
	}
}

func TestNewLoggerWithFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	path := filepath.Join(t.TempDir(), "logs", "chartline.log")
	logger := NewLoggerWithConfig(LogConfig{
		Level:    "warn",
		File:     true,
		FilePath: path,
		MaxSize:  1,
	})
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("global level = %s, want warn", zerolog.GlobalLevel())
	}

	logger.Warn().Msg("disk check")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !bytes.Contains(data, []byte("disk check")) {
		t.Errorf("log file = %s", data)
	}
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	if cfg.Level != "info" || !cfg.Console || filepath.Base(cfg.FilePath) != "chartline.log" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestWithStage(t *testing.T) {
	var buf bytes.Buffer
	logger := WithStage(zerolog.New(&buf), "swing")
	logger.Info().Msg("done")
	if m := decode(t, &buf); m["stage"] != "swing" {
		t.Errorf("fields = %v", m)
	}
}

func TestContextLogger(t *testing.T) {
	if _, ok := LoggerFrom(context.Background()); ok {
		t.Error("empty context should carry no logger")
	}
	// Nop logger is disabled
	if FromContext(context.Background()).GetLevel() != zerolog.Disabled {
		t.Error("FromContext without a logger should return a no-op logger")
	}

	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), WithSource(zerolog.New(&buf), "chart.png"))
	logger := FromContext(ctx)
	logger.Info().Msg("hello")

	if !bytes.Contains(buf.Bytes(), []byte(`"source":"chart.png"`)) {
		t.Errorf("context logger lost its fields: %s", buf.String())
	}
	if _, ok := LoggerFrom(ctx); !ok {
		t.Error("LoggerFrom should find the stored logger")
	}
}
