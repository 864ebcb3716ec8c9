package mapping

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
)

// Record is one persisted correspondence between two providers' ids for the
// same canonical entity. (EntityType, ProviderAID, ProviderBID) is unique.
type Record struct {
	EntityType  canonical.Kind     `json:"entity_type" validate:"required,oneof=league team player fixture"`
	ProviderA   canonical.Provider `json:"provider_a" validate:"required"`
	ProviderB   canonical.Provider `json:"provider_b" validate:"required,nefield=ProviderA"`
	ProviderAID string             `json:"provider_a_id" validate:"required"`
	ProviderBID string             `json:"provider_b_id" validate:"required"`
	EntityName  string             `json:"entity_name"`
	Confidence  float64            `json:"mapping_confidence" validate:"gte=0,lte=1"`
	VerifiedAt  time.Time          `json:"last_verified" validate:"required"`
}

type Key struct {
	EntityType  canonical.Kind
	ProviderAID string
	ProviderBID string
}

func (r Record) Key() Key {
	return Key{
		EntityType:  r.EntityType,
		ProviderAID: strings.TrimSpace(r.ProviderAID),
		ProviderBID: strings.TrimSpace(r.ProviderBID),
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.EntityType, k.ProviderAID, k.ProviderBID)
}

var recordValidator = validator.New()

func (r Record) Validate() error {
	if err := recordValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid mapping %s: %w", r.Key(), err)
	}
	return nil
}

type Filter struct {
	EntityType canonical.Kind
	ProviderA  canonical.Provider
	// MaxConfidence, when set, keeps records with confidence <= the value.
	MaxConfidence *float64
}
