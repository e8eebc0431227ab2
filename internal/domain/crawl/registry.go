package crawl

import (
	"sort"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
)

// Registry maps curated list ids to the classification of their accounts and back.
type Registry struct {
	byList           map[externalid.ID]game.Classification
	byClassification map[game.Classification]externalid.ID
}

func NewRegistry(entries map[externalid.ID]game.Classification) *Registry {
	r := &Registry{
		byList:           make(map[externalid.ID]game.Classification, len(entries)),
		byClassification: make(map[game.Classification]externalid.ID, len(entries)),
	}
	for listID, classification := range entries {
		r.byList[listID] = classification
		r.byClassification[classification] = listID
	}
	return r
}

// DefaultRegistry holds the production lists.
func DefaultRegistry() *Registry {
	return NewRegistry(map[externalid.ID]game.Classification{
		186814318: {Division: game.DivisionOpen, AgeBracket: game.AgeBracketCollege, League: game.LeagueUSAU},
		186814882: {Division: game.DivisionWomens, AgeBracket: game.AgeBracketCollege, League: game.LeagueUSAU},
		186732484: {Division: game.DivisionOpen, AgeBracket: game.AgeBracketNoRestriction, League: game.LeagueUSAU},
		186732631: {Division: game.DivisionWomens, AgeBracket: game.AgeBracketNoRestriction, League: game.LeagueUSAU},
		186815046: {Division: game.DivisionMixed, AgeBracket: game.AgeBracketNoRestriction, League: game.LeagueUSAU},
		186926608: {Division: game.DivisionOpen, AgeBracket: game.AgeBracketNoRestriction, League: game.LeagueAUDL},
		186926651: {Division: game.DivisionOpen, AgeBracket: game.AgeBracketNoRestriction, League: game.LeagueMLU},
	})
}

func (r *Registry) Classification(listID externalid.ID) (game.Classification, bool) {
	classification, ok := r.byList[listID]
	return classification, ok
}

// ClassificationOrDefault is used for accounts whose list is unknown.
func (r *Registry) ClassificationOrDefault(listID externalid.ID) game.Classification {
	if classification, ok := r.byList[listID]; ok {
		return classification
	}
	return game.DefaultClassification()
}

func (r *Registry) ListID(classification game.Classification) (externalid.ID, bool) {
	listID, ok := r.byClassification[classification]
	return listID, ok
}

// ListIDs returns the known lists in ascending order.
func (r *Registry) ListIDs() []externalid.ID {
	out := make([]externalid.ID, 0, len(r.byList))
	for listID := range r.byList {
		out = append(out, listID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
