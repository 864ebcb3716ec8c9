package postgres

import "time"

type entityMappingTableModel struct {
	EntityType  string    `db:"entity_type"`
	ProviderA   string    `db:"provider_a"`
	ProviderB   string    `db:"provider_b"`
	ProviderAID string    `db:"provider_a_id"`
	ProviderBID string    `db:"provider_b_id"`
	EntityName  string    `db:"entity_name"`
	Confidence  float64   `db:"mapping_confidence"`
	VerifiedAt  time.Time `db:"verified_at"`
}
