package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := logger
	SetLogger(zap.New(core))
	t.Cleanup(func() { logger = prev })
	return logs
}

func TestInitializeSilentWithoutLevel(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	prev := logger
	t.Cleanup(func() { logger = prev })

	if err := InitializeWithOutput("", "stderr"); err != nil {
		t.Fatalf("InitializeWithOutput() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without a level should be silent")
	}
}

func TestInitializeWritesFile(t *testing.T) {
	prev := logger
	t.Cleanup(func() { logger = prev })

	path := filepath.Join(t.TempDir(), "nested", "chordnova.log")
	if err := InitializeWithOutput("debug", path); err != nil {
		t.Fatalf("InitializeWithOutput() error = %v", err)
	}
	Info("hello file")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Errorf("log file = %q", data)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Error("log file contains ANSI escapes")
	}
}

func TestInitializeFromEnv(t *testing.T) {
	prev := logger
	t.Cleanup(func() { logger = prev })

	path := filepath.Join(t.TempDir(), "env.log")
	t.Setenv(LogLevelEnvVar, "warn")
	t.Setenv(LogFileEnvVar, path)

	if err := InitializeFromEnv(filepath.Join(t.TempDir(), "fallback.log")); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info enabled at warn level")
	}
	Warn("from env")
	Sync()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("CHORDNOVA_LOG_FILE not used: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogConfigRejectedTruncates(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	long := strings.Repeat("x", maxLoggedPayload+100)
	LogConfigRejected("run-1", "parse", long, errors.New("bad"))

	entries := logs.FilterMessage("Configuration rejected").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["run_id"] != "run-1" || fields["stage"] != "parse" {
		t.Errorf("fields = %v", fields)
	}
	if got := fields["config"].(string); len(got) != maxLoggedPayload+3 {
		t.Errorf("config length = %d, want %d", len(got), maxLoggedPayload+3)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
}

func TestLogEngineStateLevel(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	LogEngineState("mock", "ready", nil)
	LogEngineState("exec", "failed", errors.New("not found"))

	all := logs.All()
	if len(all) != 2 {
		t.Fatalf("got %d entries, want 2", len(all))
	}
	if all[0].Level != zapcore.InfoLevel {
		t.Errorf("ready logged at %v", all[0].Level)
	}
	if all[1].Level != zapcore.ErrorLevel {
		t.Errorf("failure logged at %v", all[1].Level)
	}
}

func TestWSMessageTypeName(t *testing.T) {
	tests := map[int]string{1: "text", 2: "binary", 8: "close", 9: "ping", 10: "pong", 42: "unknown(42)"}
	for in, want := range tests {
		if got := wsMessageTypeName(in); got != want {
			t.Errorf("wsMessageTypeName(%d) = %q, want %q", in, got, want)
		}
	}
}
