package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

type Strategy string

const (
	StrategyMinimalChange Strategy = "minimal_change"
	StrategyFullReset     Strategy = "full_reset"
)

// Keeper decides which holder of a contested number keeps it under the
// minimal-change strategy.
type Keeper string

const (
	KeeperLowestID         Keeper = "lowest_id"
	KeeperPositionPriority Keeper = "position_priority"
)

func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", StrategyMinimalChange, "minimal":
		return StrategyMinimalChange, nil
	case StrategyFullReset, "reset":
		return StrategyFullReset, nil
	default:
		return "", fmt.Errorf("unknown jersey strategy %q", raw)
	}
}

func ParseKeeper(raw string) (Keeper, error) {
	switch Keeper(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KeeperLowestID:
		return KeeperLowestID, nil
	case KeeperPositionPriority, "goalkeeper_first":
		return KeeperPositionPriority, nil
	default:
		return "", fmt.Errorf("unknown jersey keeper policy %q", raw)
	}
}

const (
	minJersey = 1
	maxJersey = 99
)

var preferredNumbers = map[canonical.Position][]int{
	canonical.PositionGoalkeeper: {1, 12, 13, 21, 22, 23, 25, 30, 31, 40, 41, 99},
	canonical.PositionDefender:   {2, 3, 4, 5, 6, 14, 15, 16, 17, 18, 19, 24, 26, 28, 32, 33, 34, 35},
	canonical.PositionMidfielder: {6, 8, 10, 14, 15, 16, 17, 18, 20, 22, 23, 24, 26, 27, 28},
	canonical.PositionForward:    {7, 9, 10, 11, 17, 18, 19, 20, 27, 29, 77, 90},
}

// PreferredNumbers returns the position's preferred shirt numbers in ascending order.
func PreferredNumbers(position canonical.Position) []int {
	numbers := append([]int(nil), preferredNumbers[position]...)
	sort.Ints(numbers)
	return numbers
}

type Options struct {
	Strategy Strategy
	Keeper   Keeper
}

type Resolution struct {
	TeamID   string
	Strategy Strategy
	Changes  []Change
}

// numberSet is the numbers taken on one team. It is created and consumed by a
// single team's resolution call.
type numberSet map[int]struct{}

func (s numberSet) has(n int) bool {
	_, ok := s[n]
	return ok
}

// nextNumber picks the lowest free preferred number for the position, then the
// lowest free number in 1..99. ok is false when the team is full.
func nextNumber(position canonical.Position, used numberSet) (int, bool) {
	for _, n := range PreferredNumbers(position) {
		if !used.has(n) {
			return n, true
		}
	}
	for n := minJersey; n <= maxJersey; n++ {
		if !used.has(n) {
			return n, true
		}
	}
	return 0, false
}

// Resolve computes the jersey reassignments for one team's roster. The input
// must be a single consistent snapshot of that team; entries for other teams
// are ignored.
func Resolve(teamID string, entries []Entry, opts Options) Resolution {
	team := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.TeamID == teamID {
			team = append(team, entry)
		}
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyMinimalChange
	}

	out := Resolution{TeamID: teamID, Strategy: strategy}
	switch strategy {
	case StrategyFullReset:
		out.Changes = resolveFullReset(team)
	default:
		out.Changes = resolveMinimalChange(team, opts.Keeper)
	}
	return out
}

func resolveMinimalChange(team []Entry, keeper Keeper) []Change {
	used := make(numberSet, len(team))
	holders := make(map[int][]Entry)
	for _, entry := range team {
		if entry.JerseyNumber == nil {
			continue
		}
		used[*entry.JerseyNumber] = struct{}{}
		holders[*entry.JerseyNumber] = append(holders[*entry.JerseyNumber], entry)
	}

	contested := make([]int, 0)
	for number, entries := range holders {
		if len(entries) > 1 {
			contested = append(contested, number)
		}
	}
	sort.Ints(contested)

	changes := make([]Change, 0)
	for _, number := range contested {
		entries := holders[number]
		sortForKeeper(entries, keeper)
		for _, entry := range entries[1:] {
			before := number
			change := Change{
				TeamID:   entry.TeamID,
				PlayerID: entry.PlayerID,
				Name:     entry.PlayerName,
				Before:   &before,
				Reason:   fmt.Sprintf("#%d kept by player %s", number, entries[0].PlayerID),
			}
			if next, ok := nextNumber(entry.Position, used); ok {
				used[next] = struct{}{}
				change.After = &next
			} else {
				change.Reason += "; no free number"
			}
			changes = append(changes, change)
		}
	}
	return changes
}

func resolveFullReset(team []Entry) []Change {
	ordered := append([]Entry(nil), team...)
	sort.SliceStable(ordered, func(i, j int) bool {
		leftGK := ordered[i].Position == canonical.PositionGoalkeeper
		rightGK := ordered[j].Position == canonical.PositionGoalkeeper
		if leftGK != rightGK {
			return leftGK
		}
		return canonical.CompareRefs(ordered[i].PlayerID, ordered[j].PlayerID) < 0
	})

	used := make(numberSet, len(ordered))
	changes := make([]Change, 0)
	for _, entry := range ordered {
		var after *int
		if next, ok := nextNumber(entry.Position, used); ok {
			used[next] = struct{}{}
			after = &next
		}
		if sameNumber(entry.JerseyNumber, after) {
			continue
		}
		reason := "full reset"
		if after == nil {
			reason = "full reset; no free number"
		}
		changes = append(changes, Change{
			TeamID:   entry.TeamID,
			PlayerID: entry.PlayerID,
			Name:     entry.PlayerName,
			Before:   cloneNumber(entry.JerseyNumber),
			After:    after,
			Reason:   reason,
		})
	}
	return changes
}

func sortForKeeper(entries []Entry, keeper Keeper) {
	sort.SliceStable(entries, func(i, j int) bool {
		if keeper == KeeperPositionPriority {
			left, right := entries[i].Position.Rank(), entries[j].Position.Rank()
			if left != right {
				return left < right
			}
		}
		return canonical.CompareRefs(entries[i].PlayerID, entries[j].PlayerID) < 0
	})
}

// Apply returns the roster with the changes written in, for callers that need
// the post-resolution snapshot without a store round-trip.
func Apply(entries []Entry, changes []Change) []Entry {
	byPlayer := make(map[string]Change, len(changes))
	for _, change := range changes {
		byPlayer[change.TeamID+"/"+change.PlayerID] = change
	}
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if change, ok := byPlayer[entry.TeamID+"/"+entry.PlayerID]; ok {
			entry.JerseyNumber = cloneNumber(change.After)
		}
		out = append(out, entry)
	}
	return out
}

type Violation struct {
	TeamID         string      `json:"team_id"`
	NonNullCount   int         `json:"non_null_count"`
	DistinctCount  int         `json:"distinct_count"`
	DuplicateCount map[int]int `json:"duplicate_count"`
}

// Verify groups numbers per team and reports every team whose distinct
// non-null number count is below its non-null count.
func Verify(entries []Entry) []Violation {
	type tally struct {
		nonNull int
		counts  map[int]int
	}
	byTeam := make(map[string]*tally)
	for _, entry := range entries {
		t, ok := byTeam[entry.TeamID]
		if !ok {
			t = &tally{counts: make(map[int]int)}
			byTeam[entry.TeamID] = t
		}
		if entry.JerseyNumber == nil {
			continue
		}
		t.nonNull++
		t.counts[*entry.JerseyNumber]++
	}

	out := make([]Violation, 0)
	for teamID, t := range byTeam {
		if len(t.counts) >= t.nonNull {
			continue
		}
		dups := make(map[int]int)
		for number, count := range t.counts {
			if count > 1 {
				dups[number] = count
			}
		}
		out = append(out, Violation{
			TeamID:         teamID,
			NonNullCount:   t.nonNull,
			DistinctCount:  len(t.counts),
			DuplicateCount: dups,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

func sameNumber(left, right *int) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	return *left == *right
}

func cloneNumber(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
