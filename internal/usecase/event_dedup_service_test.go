package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/event"
	"github.com/systic2/allleaguesfans-sub001/internal/infrastructure/repository/memory"
	eventmock "github.com/systic2/allleaguesfans-sub001/internal/mocks/domain/event"
	"github.com/systic2/allleaguesfans-sub001/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func duplicateEventRows() []event.Row {
	detail := "Penalty"
	return []event.Row{
		{ID: 1, FixtureID: "fx_1", TeamID: "tm_1", PlayerID: "pl_1", Minute: 23, Type: "Goal"},
		{ID: 2, FixtureID: "fx_1", TeamID: "tm_1", PlayerID: "pl_1", Minute: 23, Type: "Goal", Comments: "replayed"},
		{ID: 3, FixtureID: "fx_1", TeamID: "tm_1", PlayerID: "pl_1", Minute: 23, Type: "Goal"},
		{ID: 4, FixtureID: "fx_1", TeamID: "tm_1", PlayerID: "pl_2", Minute: 60, Type: "Goal", Detail: &detail},
		{ID: 5, FixtureID: "fx_2", TeamID: "tm_2", PlayerID: "pl_3", Minute: 12, Type: "Yellowcard"},
		{ID: 6, FixtureID: "fx_2", TeamID: "tm_2", PlayerID: "pl_3", Minute: 12, Type: "Yellowcard"},
	}
}

func TestEventDedupService_DryRunReportsWithoutDeleting(t *testing.T) {
	t.Parallel()

	repo := memory.NewEventRepository(duplicateEventRows())
	service := NewEventDedupService(repo, 0, logging.NewNop())

	result, err := service.Run(context.Background(), DedupInput{DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if result.Scanned != 6 || result.Planned != 3 || result.Deleted != 0 || len(result.Fixtures) != 2 {
		t.Fatalf("unexpected dry-run report: %+v", result)
	}
	if rows, _ := repo.ListAll(context.Background()); len(rows) != 6 {
		t.Fatalf("dry run deleted rows: left=%d", len(rows))
	}
}

func TestEventDedupService_DeletesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := memory.NewEventRepository(duplicateEventRows())
	service := NewEventDedupService(repo, 2, logging.NewNop())

	first, err := service.Run(context.Background(), DedupInput{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Deleted != 3 {
		t.Fatalf("expected 3 deletions, got %+v", first)
	}

	rows, _ := repo.ListAll(context.Background())
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	want := []int64{1, 4, 5}
	if len(ids) != len(want) {
		t.Fatalf("unexpected survivors: %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("unexpected survivors: got=%v want=%v", ids, want)
		}
	}

	second, err := service.Run(context.Background(), DedupInput{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Planned != 0 || second.Deleted != 0 {
		t.Fatalf("expected no-op second run, got %+v", second)
	}
}

func TestEventDedupService_ScopedToFixtures(t *testing.T) {
	t.Parallel()

	repo := memory.NewEventRepository(duplicateEventRows())
	service := NewEventDedupService(repo, 0, logging.NewNop())

	result, err := service.Run(context.Background(), DedupInput{FixtureIDs: []string{" fx_2 ", ""}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Scanned != 2 || result.Deleted != 1 || result.Fixtures[0].FixtureID != "fx_2" {
		t.Fatalf("unexpected scoped result: %+v", result)
	}
}

func TestEventDedupService_DeleteFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := eventmock.NewRepository(t)
	service := NewEventDedupService(repo, 0, logging.NewNop())

	repo.
		On("ListByFixtures", mock.Anything, []string{"fx_1"}).
		Return(duplicateEventRows()[:4], nil).
		Once()
	repo.
		On("Delete", mock.Anything, []int64{2, 3}).
		Return(0, errors.New("connection reset")).
		Once()

	result, err := service.Run(ctx, DedupInput{FixtureIDs: []string{"fx_1"}})
	if err == nil {
		t.Fatalf("expected delete error")
	}
	if result.Planned != 2 || result.Deleted != 0 {
		t.Fatalf("report phase must be complete before delete fails, got %+v", result)
	}
}
