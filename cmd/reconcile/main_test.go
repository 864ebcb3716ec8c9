package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/roster"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	t.Run("defaults to full text run", func(t *testing.T) {
		opts, err := parseFlags(nil, io.Discard)
		if err != nil {
			t.Fatalf("parse flags: %v", err)
		}
		if opts.mode != "full" || opts.format != formatText || opts.dryRun {
			t.Fatalf("unexpected defaults: %+v", opts)
		}
	})

	t.Run("csv lists", func(t *testing.T) {
		opts, err := parseFlags([]string{"-mode", "jerseys", "-team", "t1, t2,,", "-dry-run"}, io.Discard)
		if err != nil {
			t.Fatalf("parse flags: %v", err)
		}
		if len(opts.teams) != 2 || opts.teams[1] != "t2" || !opts.dryRun {
			t.Fatalf("unexpected options: %+v", opts)
		}
	})

	t.Run("prune needs kind", func(t *testing.T) {
		if _, err := parseFlags([]string{"-mode", "prune-mappings"}, io.Discard); err == nil {
			t.Fatalf("expected missing kind error")
		}
		opts, err := parseFlags([]string{"-mode", "prune-mappings", "-kind", "players", "-min-confidence", "0.8"}, io.Discard)
		if err != nil {
			t.Fatalf("parse flags: %v", err)
		}
		if opts.kind != canonical.KindPlayer || opts.minConfidence != 0.8 {
			t.Fatalf("unexpected prune options: %+v", opts)
		}
	})

	t.Run("rejects unknown mode and format", func(t *testing.T) {
		if _, err := parseFlags([]string{"-mode", "resync"}, io.Discard); err == nil {
			t.Fatalf("expected unknown mode error")
		}
		if _, err := parseFlags([]string{"-format", "yaml"}, io.Discard); err == nil {
			t.Fatalf("expected unknown format error")
		}
		if _, err := parseFlags([]string{"extra"}, io.Discard); err == nil {
			t.Fatalf("expected error for positional args")
		}
	})
}

func TestWriteReport_Text(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	result := usecase.RunResult{
		RunID:   "run-1",
		Mode:    usecase.ReconcileModeTeams,
		Leagues: []string{"lg-1"},
		Kinds: []usecase.KindResult{{
			Kind:      canonical.KindTeam,
			Processed: 20,
			Matched:   18,
			Created:   2,
			Unmapped:  []usecase.UnmappedEntity{{ID: "tm-9", Ref: "9", Name: "Persija", BestScore: 0.41}},
		}},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}

	var out bytes.Buffer
	if err := writeReport(&out, formatText, result, func(w io.Writer) { renderRun(w, result) }); err != nil {
		t.Fatalf("write report: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"run run-1 mode=teams dry_run=false leagues=lg-1 took=1.5s",
		"team            20      18       2       0        1      0",
		`unmapped team id=tm-9 ref=9 name="Persija" best=0.410`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in report:\n%s", want, text)
		}
	}
}

func TestWriteReport_JSON(t *testing.T) {
	t.Parallel()

	violations := []roster.Violation{{TeamID: "tm-1", NonNullCount: 3, DistinctCount: 2, DuplicateCount: map[int]int{7: 2}}}

	var out bytes.Buffer
	if err := writeReport(&out, formatJSON, violations, func(io.Writer) { t.Fatalf("text renderer must not run") }); err != nil {
		t.Fatalf("write report: %v", err)
	}
	var decoded []map[string]any
	if err := sonic.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["team_id"] != "tm-1" {
		t.Fatalf("unexpected json report: %s", out.String())
	}
}

func TestRenderDedupAndViolations(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	renderDedup(&out, usecase.DedupResult{
		Scanned:  5,
		Planned:  2,
		DryRun:   true,
		Fixtures: []usecase.DedupFixtureReport{{FixtureID: "fx-1", Rows: 5, Groups: 1, DeleteIDs: []int64{4, 5}}},
	})
	renderViolations(&out, nil)

	text := out.String()
	if !strings.Contains(text, "fixture fx-1 rows=5 groups=1 delete=[4,5]") {
		t.Fatalf("missing fixture line:\n%s", text)
	}
	if !strings.Contains(text, "jersey verify: no collisions") {
		t.Fatalf("missing verify line:\n%s", text)
	}
}
