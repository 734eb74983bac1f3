package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"QuantAI/internal/model"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("QUANT_PROVIDER", "mock")
	t.Setenv("QUANT_INDICATOR_BACKEND", "native")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
}

func TestAnalyzeThenHistory(t *testing.T) {
	setupEnv(t)
	cfg := filepath.Join(t.TempDir(), "none.yaml")

	out, err := runCLI(t, "--config", cfg, "--json", "analyze", "aapl", "--holding-cost", "90")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var rep model.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if rep.Ticker != "AAPL" || rep.HoldingCost == nil || *rep.HoldingCost != 90 {
		t.Errorf("report = %+v", rep)
	}

	out, err = runCLI(t, "--config", cfg, "history", "AAPL", "-n", "5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "AAPL") || !strings.Contains(out, rep.Advice.Action) {
		t.Errorf("history output = %q", out)
	}
}

func TestAnalyze_TextOutput(t *testing.T) {
	setupEnv(t)
	out, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "analyze", "MSFT")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{"MSFT", "RSI", "MA20", "Technical Score:", "Advice:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLIErrors(t *testing.T) {
	setupEnv(t)
	cfg := filepath.Join(t.TempDir(), "none.yaml")
	tests := [][]string{
		{"--config", cfg, "analyze"},
		{"--config", cfg, "analyze", "AA PL"},
		{"--config", cfg, "analyze", "AAPL", "--holding-cost", "-3"},
		{"--config", cfg, "--provider", "reuters", "analyze", "AAPL"},
		{"--config", cfg, "history", "AAPL", "--limit", "0"},
	}
	for _, args := range tests {
		if _, err := runCLI(t, args...); err == nil {
			t.Errorf("quant %v: expected error", args)
		}
	}
}
