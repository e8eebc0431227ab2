package memory

import (
	"strings"

	"github.com/riskibarqy/ultimate-scores/internal/domain/crawl"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
)

// SeedManagedLists names every registry list after its classification.
func SeedManagedLists(registry *crawl.Registry) []crawl.ManagedList {
	if registry == nil {
		return nil
	}

	ids := registry.ListIDs()
	out := make([]crawl.ManagedList, 0, len(ids))
	for _, listID := range ids {
		classification, _ := registry.Classification(listID)
		out = append(out, crawl.ManagedList{
			ID:   listID,
			Name: managedListName(classification),
			Slug: managedListSlug(classification),
		})
	}
	return out
}

func managedListName(classification game.Classification) string {
	parts := []string{classification.League.String(), classification.Division.String()}
	if classification.AgeBracket != game.AgeBracketNoRestriction {
		parts = append(parts, classification.AgeBracket.String())
	}
	return strings.Join(parts, " ")
}

func managedListSlug(classification game.Classification) string {
	name := strings.ToLower(managedListName(classification))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(name)
}
