package canonical

import "strings"

type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

// NormalizePosition folds the provider vocabularies ("Goalkeeper", "Centre-Back",
// "Attacker", "G", ...) into the four canonical lines. Unknown values map to "".
func NormalizePosition(raw string) Position {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.NewReplacer("-", " ", "_", " ").Replace(value)
	switch value {
	case "":
		return ""
	case "gk", "g", "goalkeeper", "keeper", "goalie":
		return PositionGoalkeeper
	case "def", "d", "defender", "defence", "defense":
		return PositionDefender
	case "mid", "m", "midfielder", "midfield":
		return PositionMidfielder
	case "fwd", "f", "forward", "attacker", "striker":
		return PositionForward
	}

	switch {
	case strings.Contains(value, "keeper"):
		return PositionGoalkeeper
	case strings.Contains(value, "midfield"):
		return PositionMidfielder
	case strings.Contains(value, "back"), strings.Contains(value, "defen"), strings.Contains(value, "sweeper"):
		return PositionDefender
	case strings.Contains(value, "wing"), strings.Contains(value, "forward"), strings.Contains(value, "striker"), strings.Contains(value, "attack"):
		return PositionForward
	default:
		return ""
	}
}

// Rank orders lines goalkeeper-first; unknown positions sort last.
func (p Position) Rank() int {
	switch p {
	case PositionGoalkeeper:
		return 0
	case PositionDefender:
		return 1
	case PositionMidfielder:
		return 2
	case PositionForward:
		return 3
	default:
		return 4
	}
}
