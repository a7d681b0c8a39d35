package usecase

import (
	"sort"

	"github.com/kirillkom/lead-research-agent/internal/core/domain"
	"github.com/kirillkom/lead-research-agent/internal/core/ports"
)

// finalizeEntities deduplicates by canonical key keeping the first occurrence,
// sorts by confidence descending with a stable sort, and truncates to the
// extractor's result cap.
func finalizeEntities(entities []*domain.Entity, extractor ports.EntityExtractor) []*domain.Entity {
	seen := make(map[string]struct{}, len(entities))
	unique := make([]*domain.Entity, 0, len(entities))
	for _, entity := range entities {
		key := extractor.CanonicalKey(entity)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, entity)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Confidence > unique[j].Confidence
	})
	if max := extractor.MaxResults(); len(unique) > max {
		unique = unique[:max]
	}
	return unique
}
