package event

import "sort"

// DedupKey is the normalization contract for "same event". Two rows that agree
// on every field here are duplicates even if they differ elsewhere (comments).
type DedupKey struct {
	FixtureID      string
	TeamID         string
	PlayerID       string
	AssistPlayerID string
	HasAssist      bool
	Minute         int
	ExtraMinutes   int
	HasExtra       bool
	Type           string
	Detail         string
	HasDetail      bool
}

func KeyOf(row Row) DedupKey {
	key := DedupKey{
		FixtureID: row.FixtureID,
		TeamID:    row.TeamID,
		PlayerID:  row.PlayerID,
		Minute:    row.Minute,
		Type:      row.Type,
	}
	if row.AssistPlayerID != nil {
		key.AssistPlayerID = *row.AssistPlayerID
		key.HasAssist = true
	}
	if row.ExtraMinutes != nil {
		key.ExtraMinutes = *row.ExtraMinutes
		key.HasExtra = true
	}
	if row.Detail != nil {
		key.Detail = *row.Detail
		key.HasDetail = true
	}
	return key
}

type DuplicateGroup struct {
	Key     DedupKey
	KeepID  int64
	DropIDs []int64
}

type FixturePlan struct {
	FixtureID string
	Rows      int
	Groups    []DuplicateGroup
}

func (p FixturePlan) DeleteIDs() []int64 {
	out := make([]int64, 0)
	for _, group := range p.Groups {
		out = append(out, group.DropIDs...)
	}
	return out
}

// PlanDedup groups rows per fixture by DedupKey and, for each group with more
// than one row, keeps the minimum id. Only fixtures with duplicates are returned,
// ordered by fixture id.
func PlanDedup(rows []Row) []FixturePlan {
	byFixture := make(map[string][]Row)
	for _, row := range rows {
		byFixture[row.FixtureID] = append(byFixture[row.FixtureID], row)
	}

	fixtureIDs := make([]string, 0, len(byFixture))
	for fixtureID := range byFixture {
		fixtureIDs = append(fixtureIDs, fixtureID)
	}
	sort.Strings(fixtureIDs)

	out := make([]FixturePlan, 0)
	for _, fixtureID := range fixtureIDs {
		plan := planFixture(fixtureID, byFixture[fixtureID])
		if len(plan.Groups) > 0 {
			out = append(out, plan)
		}
	}
	return out
}

func planFixture(fixtureID string, rows []Row) FixturePlan {
	sorted := append([]Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	order := make([]DedupKey, 0, len(sorted))
	groups := make(map[DedupKey][]int64, len(sorted))
	for _, row := range sorted {
		key := KeyOf(row)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row.ID)
	}

	plan := FixturePlan{FixtureID: fixtureID, Rows: len(rows)}
	for _, key := range order {
		ids := groups[key]
		if len(ids) < 2 {
			continue
		}
		plan.Groups = append(plan.Groups, DuplicateGroup{
			Key:     key,
			KeepID:  ids[0],
			DropIDs: append([]int64(nil), ids[1:]...),
		})
	}
	return plan
}
