package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/systic2/allleaguesfans-sub001/internal/domain/canonical"
	"github.com/systic2/allleaguesfans-sub001/internal/domain/mapping"
)

type MappingRepository struct {
	mu      sync.RWMutex
	records map[mapping.Key]mapping.Record
}

func NewMappingRepository() *MappingRepository {
	return &MappingRepository{records: make(map[mapping.Key]mapping.Record)}
}

func (r *MappingRepository) Upsert(_ context.Context, records []mapping.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range records {
		r.records[record.Key()] = record
	}
	return nil
}

func (r *MappingRepository) FindByProviderA(_ context.Context, kind canonical.Kind, providerAID string) ([]mapping.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]mapping.Record, 0)
	for key, record := range r.records {
		if key.EntityType == kind && key.ProviderAID == providerAID {
			out = append(out, record)
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *MappingRepository) List(_ context.Context, filter mapping.Filter) ([]mapping.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]mapping.Record, 0, len(r.records))
	for _, record := range r.records {
		if filter.EntityType != "" && record.EntityType != filter.EntityType {
			continue
		}
		if filter.ProviderA != "" && record.ProviderA != filter.ProviderA {
			continue
		}
		if filter.MaxConfidence != nil && record.Confidence > *filter.MaxConfidence {
			continue
		}
		out = append(out, record)
	}
	sortRecords(out)
	return out, nil
}

func (r *MappingRepository) Delete(_ context.Context, keys []mapping.Key) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for _, key := range keys {
		if _, ok := r.records[key]; ok {
			delete(r.records, key)
			deleted++
		}
	}
	return deleted, nil
}

func sortRecords(records []mapping.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key().String() < records[j].Key().String()
	})
}
