package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	if !shouldSkipUptraceLog(logging.LevelDebug, "batch flushed") {
		t.Fatalf("expected debug record to be skipped")
	}
	if !shouldSkipUptraceLog(logging.LevelInfo, "jersey change") {
		t.Fatalf("expected per-change record to be skipped")
	}
	if shouldSkipUptraceLog(logging.LevelWarn, "pass finished") {
		t.Fatalf("did not expect pass summary to be skipped")
	}
}

func TestSeverityOf(t *testing.T) {
	cases := map[logging.Level]otellog.Severity{
		logging.LevelDebug: otellog.SeverityDebug,
		logging.LevelInfo:  otellog.SeverityInfo,
		logging.LevelWarn:  otellog.SeverityWarn,
		logging.LevelError: otellog.SeverityError,
	}
	for level, want := range cases {
		if got := severityOf(level); got != want {
			t.Fatalf("level %s: expected %v, got %v", level, want, got)
		}
	}
}

func TestLogAttributes(t *testing.T) {
	attrs := logAttributes([]any{"league_id", "8", 42, uint16(2), "payload"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "league_id" || attrs[0].Value.AsString() != "8" {
		t.Fatalf("unexpected league_id attribute")
	}
	if attrs[1].Key != "arg_1" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected positional attribute: %s", attrs[1].Key)
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute")
	}
}

func TestLogValue(t *testing.T) {
	if v := logValue(canonical.KindTeam, 0); v.Kind() != otellog.KindString || v.AsString() != "team" {
		t.Fatalf("expected named string type to map to string, got %s", v.Kind())
	}
	if v := logValue(1500*time.Millisecond, 0); v.AsString() != "1.5s" {
		t.Fatalf("unexpected duration value %q", v.AsString())
	}
	if v := logValue(errors.New("boom"), 0); v.AsString() != "boom" {
		t.Fatalf("unexpected error value %q", v.AsString())
	}
	if v := logValue([]int64{4, 7}, 0); v.Kind() != otellog.KindSlice || len(v.AsSlice()) != 2 {
		t.Fatalf("expected slice value, got %s", v.Kind())
	}

	v := logValue(map[string]any{"matched": 11, "dry_run": true}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	items := v.AsMap()
	if len(items) != 2 || items[0].Key != "dry_run" || !items[0].Value.AsBool() {
		t.Fatalf("unexpected map items %+v", items)
	}
}
