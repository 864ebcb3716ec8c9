package event

import (
	"fmt"
	"strings"
)

// Row is one persisted in-match event. ID is the store's insert-ordered
// identifier; the lowest id in a duplicate group is the earliest insert.
type Row struct {
	ID             int64
	FixtureID      string
	TeamID         string
	PlayerID       string
	AssistPlayerID *string
	Minute         int
	ExtraMinutes   *int
	Type           string
	Detail         *string
	Comments       string
}

func (r Row) Validate() error {
	if strings.TrimSpace(r.FixtureID) == "" {
		return fmt.Errorf("fixture id is required")
	}
	if strings.TrimSpace(r.Type) == "" {
		return fmt.Errorf("event type is required")
	}
	if r.Minute < 0 {
		return fmt.Errorf("minute must be >= 0")
	}
	return nil
}

// Incoming is an event as a provider reports it, still keyed by that
// provider's own fixture/team/player ids.
type Incoming struct {
	FixtureRef   string
	TeamRef      string
	PlayerRef    string
	AssistRef    string
	Minute       int
	ExtraMinutes *int
	Type         string
	Detail       string
	Comments     string
}
