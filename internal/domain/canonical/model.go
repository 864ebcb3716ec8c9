package canonical

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Kind string

const (
	KindLeague  Kind = "league"
	KindTeam    Kind = "team"
	KindPlayer  Kind = "player"
	KindFixture Kind = "fixture"
)

// DependencyOrder is the order a pass must follow so parents exist before children.
func DependencyOrder() []Kind {
	return []Kind{KindLeague, KindTeam, KindPlayer, KindFixture}
}

func (k Kind) Valid() bool {
	switch k {
	case KindLeague, KindTeam, KindPlayer, KindFixture:
		return true
	default:
		return false
	}
}

func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case "leagues":
		kind = KindLeague
	case "teams":
		kind = KindTeam
	case "players":
		kind = KindPlayer
	case "fixtures":
		kind = KindFixture
	}
	if !kind.Valid() {
		return "", fmt.Errorf("unknown entity kind %q", raw)
	}
	return kind, nil
}

type Provider string

const (
	ProviderSportMonks  Provider = "sportmonks"
	ProviderTheSportsDB Provider = "thesportsdb"
)

// Fixture statuses every normalizer maps its provider vocabulary onto.
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
	StatusPostponed = "postponed"
	StatusCancelled = "cancelled"
)

type SourceIDs map[Provider]string

func (s SourceIDs) Clone() SourceIDs {
	out := make(SourceIDs, len(s))
	for provider, ref := range s {
		out[provider] = ref
	}
	return out
}

// Entity is the provider-agnostic record for every kind. ID and Kind are the
// identity; everything else is descriptive and may change between sightings.
type Entity struct {
	ID   string `validate:"required"`
	Kind Kind   `validate:"required,oneof=league team player fixture"`

	Name      string `validate:"required"`
	AltNames  []string
	ShortCode string
	Country   string
	ImageURL  string
	Season    string

	ParentID  string `validate:"required_if=Kind team,required_if=Kind player,required_if=Kind fixture"`
	ParentRef string

	Position    Position
	ShirtNumber *int `validate:"omitempty,min=0,max=99"`
	BirthDate   string

	HomeTeamID  string
	AwayTeamID  string
	HomeTeamRef string
	AwayTeamRef string
	HomeName    string
	AwayName    string
	KickoffAt   *time.Time
	HomeScore   *int
	AwayScore   *int
	Status      string
	Venue       string

	SourceIDs SourceIDs
}

var entityValidator = validator.New(validator.WithRequiredStructEnabled())

func (e Entity) Validate() error {
	if err := entityValidator.Struct(e); err != nil {
		return fmt.Errorf("invalid %s %q: %w", e.Kind, e.ID, err)
	}
	if len(e.SourceIDs) == 0 {
		return fmt.Errorf("invalid %s %q: at least one source id is required", e.Kind, e.ID)
	}
	return nil
}

func (e Entity) SourceID(provider Provider) string {
	if e.SourceIDs == nil {
		return ""
	}
	return e.SourceIDs[provider]
}

func (e Entity) WithSource(provider Provider, ref string) Entity {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return e
	}
	ids := e.SourceIDs.Clone()
	ids[provider] = ref
	e.SourceIDs = ids
	return e
}

// Names returns the display name followed by alternates, skipping blanks.
func (e Entity) Names() []string {
	out := make([]string, 0, len(e.AltNames)+1)
	if strings.TrimSpace(e.Name) != "" {
		out = append(out, e.Name)
	}
	for _, alt := range e.AltNames {
		if strings.TrimSpace(alt) != "" {
			out = append(out, alt)
		}
	}
	return out
}

// Merge applies a fresh sighting from the system-of-record provider. Identity
// is kept; descriptive fields are replaced when the sighting carries them.
// A team stays under the league that first listed it.
func (e Entity) Merge(incoming Entity) Entity {
	out := e
	out.Name = pickString(incoming.Name, e.Name)
	if len(incoming.AltNames) > 0 {
		out.AltNames = append([]string(nil), incoming.AltNames...)
	}
	out.ShortCode = pickString(incoming.ShortCode, e.ShortCode)
	out.Country = pickString(incoming.Country, e.Country)
	out.ImageURL = pickString(incoming.ImageURL, e.ImageURL)
	out.Season = pickString(incoming.Season, e.Season)
	if e.Kind != KindTeam || e.ParentID == "" {
		out.ParentID = pickString(incoming.ParentID, e.ParentID)
		out.ParentRef = pickString(incoming.ParentRef, e.ParentRef)
	}
	if incoming.Position != "" {
		out.Position = incoming.Position
	}
	if incoming.ShirtNumber != nil {
		out.ShirtNumber = cloneInt(incoming.ShirtNumber)
	}
	out.BirthDate = pickString(incoming.BirthDate, e.BirthDate)
	out.HomeTeamID = pickString(incoming.HomeTeamID, e.HomeTeamID)
	out.AwayTeamID = pickString(incoming.AwayTeamID, e.AwayTeamID)
	out.HomeTeamRef = pickString(incoming.HomeTeamRef, e.HomeTeamRef)
	out.AwayTeamRef = pickString(incoming.AwayTeamRef, e.AwayTeamRef)
	out.HomeName = pickString(incoming.HomeName, e.HomeName)
	out.AwayName = pickString(incoming.AwayName, e.AwayName)
	if incoming.KickoffAt != nil {
		kickoff := incoming.KickoffAt.UTC()
		out.KickoffAt = &kickoff
	}
	if incoming.HomeScore != nil {
		out.HomeScore = cloneInt(incoming.HomeScore)
	}
	if incoming.AwayScore != nil {
		out.AwayScore = cloneInt(incoming.AwayScore)
	}
	out.Status = pickString(incoming.Status, e.Status)
	out.Venue = pickString(incoming.Venue, e.Venue)

	ids := e.SourceIDs.Clone()
	for provider, ref := range incoming.SourceIDs {
		if strings.TrimSpace(ref) != "" {
			ids[provider] = ref
		}
	}
	out.SourceIDs = ids
	return out
}

// Enrich fills only the fields the canonical row is missing from a matched
// secondary record, and records the secondary source id.
func (e Entity) Enrich(provider Provider, candidate Entity) Entity {
	out := e
	out.ShortCode = pickString(e.ShortCode, candidate.ShortCode)
	out.Country = pickString(e.Country, candidate.Country)
	out.ImageURL = pickString(e.ImageURL, candidate.ImageURL)
	out.Season = pickString(e.Season, candidate.Season)
	out.BirthDate = pickString(e.BirthDate, candidate.BirthDate)
	out.Venue = pickString(e.Venue, candidate.Venue)
	if out.Position == "" {
		out.Position = candidate.Position
	}
	if out.ShirtNumber == nil && candidate.ShirtNumber != nil {
		out.ShirtNumber = cloneInt(candidate.ShirtNumber)
	}
	for _, alt := range candidate.Names() {
		if !containsFold(out.Names(), alt) {
			out.AltNames = append(out.AltNames, alt)
		}
	}
	return out.WithSource(provider, candidate.SourceID(provider))
}

// CompareRefs orders provider-local ids numerically when both are integers and
// lexically otherwise.
func CompareRefs(a, b string) int {
	left, leftErr := strconv.ParseInt(a, 10, 64)
	right, rightErr := strconv.ParseInt(b, 10, 64)
	if leftErr == nil && rightErr == nil {
		switch {
		case left < right:
			return -1
		case left > right:
			return 1
		default:
			return 0
		}
	}
	if leftErr == nil {
		return -1
	}
	if rightErr == nil {
		return 1
	}
	return strings.Compare(a, b)
}

// SortBySource orders records by their provider-local id so that matcher
// tie-breaks do not depend on fetch order.
func SortBySource(records []Entity, provider Provider) {
	sort.SliceStable(records, func(i, j int) bool {
		return CompareRefs(records[i].SourceID(provider), records[j].SourceID(provider)) < 0
	})
}

// FixtureCode is the short code both normalizers give a fixture: participants
// in one provider's ids plus the UTC kickoff date.
func FixtureCode(homeRef, awayRef string, kickoff time.Time) string {
	return fmt.Sprintf("%s-%s@%s", strings.TrimSpace(homeRef), strings.TrimSpace(awayRef), kickoff.UTC().Format("2006-01-02"))
}

type Rejection struct {
	Kind     Kind
	Provider Provider
	Ref      string
	Reason   string
}

func (r Rejection) Error() string {
	ref := r.Ref
	if ref == "" {
		ref = "<unknown>"
	}
	return fmt.Sprintf("%s %s %s: %s", r.Provider, r.Kind, ref, r.Reason)
}

// Batch is what a provider normalizer emits for one fetch.
type Batch struct {
	Provider Provider
	Kind     Kind
	Records  []Entity
	Rejected []Rejection
}

func (b *Batch) Reject(ref, reason string) {
	b.Rejected = append(b.Rejected, Rejection{
		Kind:     b.Kind,
		Provider: b.Provider,
		Ref:      ref,
		Reason:   reason,
	})
}

func (b *Batch) Append(other Batch) {
	b.Records = append(b.Records, other.Records...)
	b.Rejected = append(b.Rejected, other.Rejected...)
}

// Scope addresses one fetch in a provider's own identifiers.
type Scope struct {
	LeagueRef string
	TeamRef   string
	Season    string
}

func pickString(preferred, fallback string) string {
	if strings.TrimSpace(preferred) != "" {
		return strings.TrimSpace(preferred)
	}
	return fallback
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}
