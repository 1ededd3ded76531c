package sysutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zerolog.Level{
		"debug": zerolog.DebugLevel, "  DeBuG  ": zerolog.DebugLevel,
		"warn": zerolog.WarnLevel, "Warning": zerolog.WarnLevel,
		"error": zerolog.ErrorLevel, "fatal": zerolog.FatalLevel, "panic": zerolog.PanicLevel,
		"info": zerolog.InfoLevel, "": zerolog.InfoLevel, "trace-ish": zerolog.InfoLevel,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetLogLevel_SetsGlobal(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	SetLogLevel("error")
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("global level = %v", zerolog.GlobalLevel())
	}
}

func TestIsTruthy(t *testing.T) {
	for v, want := range map[string]bool{
		"1": true, "TRUE": true, " yes ": true, "Y": true, "On": true,
		"": false, "0": false, "off": false, "n": false, "  ": false, "random": false,
	} {
		if IsTruthy(v) != want {
			t.Errorf("IsTruthy(%q) != %v", v, want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{" ", "\t", "\n"}, ""},
		{[]string{"   ", "  reviewer  ", "other"}, "  reviewer  "},
		{[]string{"flag", "env"}, "flag"},
	}
	for _, tc := range cases {
		if got := FirstNonEmpty(tc.in...); got != tc.want {
			t.Errorf("FirstNonEmpty(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConfigureLogging_JSONAndPretty(t *testing.T) {
	origLevel, origLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(origLevel)
		log.Logger = origLogger
	})

	var buf bytes.Buffer
	ConfigureLogging(&buf, "warn", false, false)
	log.Info().Msg("dropped")
	log.Warn().Str("queue_id", "q1").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at warn level, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("json line: %v", err)
	}
	if rec["message"] != "kept" || rec["queue_id"] != "q1" || rec["time"] == nil {
		t.Fatalf("record: %v", rec)
	}

	buf.Reset()
	ConfigureLogging(&buf, "info", true, true)
	log.Info().Msg("console")
	out := buf.String()
	if strings.HasPrefix(out, "{") || !strings.Contains(out, "console") {
		t.Fatalf("pretty output: %q", out)
	}
}
