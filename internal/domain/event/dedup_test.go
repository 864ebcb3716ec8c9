package event

import "testing"

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestPlanDedup_KeepsMinimumID(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{ID: 20, FixtureID: "1001", TeamID: "5", PlayerID: "99", Type: "Goal", Minute: 23},
		{ID: 10, FixtureID: "1001", TeamID: "5", PlayerID: "99", Type: "Goal", Minute: 23},
		{ID: 11, FixtureID: "1001", TeamID: "5", PlayerID: "98", Type: "Yellowcard", Minute: 40},
	}

	plans := PlanDedup(rows)
	if len(plans) != 1 {
		t.Fatalf("expected 1 fixture plan, got=%d", len(plans))
	}
	plan := plans[0]
	if plan.FixtureID != "1001" || plan.Rows != 3 {
		t.Fatalf("unexpected plan header: %+v", plan)
	}
	if len(plan.Groups) != 1 {
		t.Fatalf("expected 1 duplicate group, got=%d", len(plan.Groups))
	}
	if plan.Groups[0].KeepID != 10 {
		t.Fatalf("expected row 10 to survive, got=%d", plan.Groups[0].KeepID)
	}
	deleted := plan.DeleteIDs()
	if len(deleted) != 1 || deleted[0] != 20 {
		t.Fatalf("expected row 20 to be deleted, got=%v", deleted)
	}
}

func TestPlanDedup_IdempotentAfterApplying(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{ID: 1, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10},
		{ID: 2, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10},
		{ID: 3, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10},
		{ID: 4, FixtureID: "2", TeamID: "6", PlayerID: "7", Type: "Goal", Minute: 55, ExtraMinutes: intPtr(2)},
		{ID: 5, FixtureID: "2", TeamID: "6", PlayerID: "7", Type: "Goal", Minute: 55, ExtraMinutes: intPtr(2)},
	}

	deleted := make(map[int64]struct{})
	for _, plan := range PlanDedup(rows) {
		for _, id := range plan.DeleteIDs() {
			deleted[id] = struct{}{}
		}
	}
	if len(deleted) != 3 {
		t.Fatalf("expected 3 rows deleted on first run, got=%d", len(deleted))
	}

	remaining := make([]Row, 0, len(rows))
	for _, row := range rows {
		if _, ok := deleted[row.ID]; !ok {
			remaining = append(remaining, row)
		}
	}
	if got := PlanDedup(remaining); len(got) != 0 {
		t.Fatalf("expected second run to be a no-op, got %+v", got)
	}
	if remaining[0].ID != 1 || remaining[1].ID != 4 {
		t.Fatalf("expected minimum-id survivors, got %+v", remaining)
	}
}

func TestPlanDedup_NilAndEmptyAreDistinct(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{ID: 1, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10},
		{ID: 2, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10, Detail: strPtr("")},
		{ID: 3, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10, ExtraMinutes: intPtr(0)},
		{ID: 4, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10, AssistPlayerID: strPtr("12")},
	}
	if got := PlanDedup(rows); len(got) != 0 {
		t.Fatalf("expected no duplicates, got %+v", got)
	}
}

func TestPlanDedup_IgnoresFieldsOutsideKey(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{ID: 7, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10, Comments: "header"},
		{ID: 8, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10, Comments: "left foot"},
	}
	plans := PlanDedup(rows)
	if len(plans) != 1 || plans[0].Groups[0].KeepID != 7 {
		t.Fatalf("expected comment-only differences to collapse, got %+v", plans)
	}
}

func TestPlanDedup_FreeTextDetailKeepsRowsDistinct(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{ID: 1, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10, Detail: strPtr("Right Foot")},
		{ID: 2, FixtureID: "1", TeamID: "5", PlayerID: "9", Type: "Goal", Minute: 10, Detail: strPtr("right foot shot")},
	}
	if got := PlanDedup(rows); len(got) != 0 {
		t.Fatalf("expected differing detail text to stay distinct, got %+v", got)
	}
}
