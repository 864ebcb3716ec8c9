package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/roster"
	"github.com/systic2/allleaguesfans-sub001/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func writeReport(w io.Writer, format string, value any, text func(io.Writer)) error {
	if format == formatJSON {
		raw, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		raw = append(raw, '\n')
		_, err = w.Write(raw)
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	text(buf)
	_, err := w.Write(buf.B)
	return err
}

func renderRun(w io.Writer, result usecase.RunResult) {
	fmt.Fprintf(w, "run %s mode=%s dry_run=%t leagues=%s took=%s\n",
		result.RunID,
		result.Mode,
		result.DryRun,
		joinOrDash(result.Leagues),
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond),
	)
	if len(result.Kinds) > 0 {
		fmt.Fprintf(w, "%-8s %9s %7s %7s %7s %8s %6s\n", "kind", "processed", "matched", "created", "updated", "unmapped", "errors")
	}
	for _, kind := range result.Kinds {
		fmt.Fprintf(w, "%-8s %9d %7d %7d %7d %8d %6d\n",
			kind.Kind, kind.Processed, kind.Matched, kind.Created, kind.Updated, len(kind.Unmapped), len(kind.Errors))
	}
	for _, kind := range result.Kinds {
		for _, item := range kind.Unmapped {
			fmt.Fprintf(w, "unmapped %s id=%s ref=%s name=%q best=%.3f", kind.Kind, item.ID, item.Ref, item.Name, item.BestScore)
			if item.BestCandidate != "" {
				fmt.Fprintf(w, " candidate=%q", item.BestCandidate)
			}
			fmt.Fprintln(w)
		}
		for _, item := range kind.Errors {
			fmt.Fprintf(w, "error %s %s ref=%s: %s\n", item.Kind, item.Provider, item.Ref, item.Message)
		}
	}
	if events := result.Events; events != nil {
		fmt.Fprintf(w, "events fixtures=%d fetched=%d inserted=%d skipped=%d errors=%d\n",
			events.Fixtures, events.Fetched, events.Inserted, events.Skipped, len(events.Errors))
		for _, item := range events.Errors {
			fmt.Fprintf(w, "error %s %s ref=%s: %s\n", item.Kind, item.Provider, item.Ref, item.Message)
		}
	}
}

func renderDedup(w io.Writer, result usecase.DedupResult) {
	fmt.Fprintf(w, "event dedup scanned=%d fixtures=%d planned=%d deleted=%d dry_run=%t\n",
		result.Scanned, len(result.Fixtures), result.Planned, result.Deleted, result.DryRun)
	for _, fixture := range result.Fixtures {
		ids := make([]string, 0, len(fixture.DeleteIDs))
		for _, id := range fixture.DeleteIDs {
			ids = append(ids, fmt.Sprint(id))
		}
		fmt.Fprintf(w, "fixture %s rows=%d groups=%d delete=[%s]\n", fixture.FixtureID, fixture.Rows, fixture.Groups, strings.Join(ids, ","))
	}
}

func renderJersey(w io.Writer, result usecase.JerseyResult) {
	fmt.Fprintf(w, "jersey resolve strategy=%s keeper=%s teams=%d changed=%d unassigned=%d dry_run=%t\n",
		result.Strategy, result.Keeper, len(result.Teams), result.Changed, result.Unassigned, result.DryRun)
	for _, team := range result.Teams {
		if len(team.Changes) == 0 {
			continue
		}
		fmt.Fprintf(w, "team %s players=%d changes=%d\n", team.TeamID, team.Players, len(team.Changes))
		for _, change := range team.Changes {
			fmt.Fprintf(w, "  %s\n", change.String())
		}
	}
	if len(result.Violations) > 0 {
		renderViolations(w, result.Violations)
	}
}

func renderViolations(w io.Writer, violations []roster.Violation) {
	if len(violations) == 0 {
		fmt.Fprintln(w, "jersey verify: no collisions")
		return
	}
	fmt.Fprintf(w, "jersey verify: %d team(s) with collisions\n", len(violations))
	for _, v := range violations {
		fmt.Fprintf(w, "team %s numbered=%d distinct=%d duplicates=%v\n", v.TeamID, v.NonNullCount, v.DistinctCount, v.DuplicateCount)
	}
}

func renderPrune(w io.Writer, result usecase.PruneResult) {
	fmt.Fprintf(w, "prune mappings kind=%s floor=%.2f matched=%d deleted=%d dry_run=%t\n",
		result.Kind, result.Floor, len(result.Records), result.Deleted, result.DryRun)
	for _, record := range result.Records {
		fmt.Fprintf(w, "%s %s=%s %s=%s name=%q confidence=%.3f\n",
			record.EntityType, record.ProviderA, record.ProviderAID, record.ProviderB, record.ProviderBID, record.EntityName, record.Confidence)
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
