package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	var first, second bytes.Buffer
	Init(Options{Level: "debug", Output: &first, Service: "speaky-gateway"})
	Init(Options{Level: "error", Output: &second})

	l := Component("registry")
	l.Debug().Str("client_id", "c1").Msg("opened")

	if second.Len() != 0 {
		t.Fatalf("second Init must not replace the logger, got %q", second.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(first.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", first.String(), err)
	}
	if entry["service"] != "speaky-gateway" || entry["component"] != "registry" || entry["client_id"] != "c1" {
		t.Fatalf("unexpected fields: %v", entry)
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(string), "before Init") {
			t.Fatalf("expected panic, got %v", r)
		}
	}()
	Get()
}
