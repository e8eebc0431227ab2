package game

import (
	"sort"

	"github.com/riskibarqy/ultimate-scores/internal/domain/externalid"
)

type authorCount struct {
	id    externalid.ID
	count int
}

// ReconcileTeams makes the two most frequent feed authors the teams of g.
// Games anchored by a score reporter team are left alone. The second return
// value reports whether the teams changed.
func ReconcileTeams(g Game) (Game, bool) {
	if g.HasScoreReporterSource() && g.Teams[0].ScoreReporterID != "" {
		return g, false
	}

	authors := rankFeedAuthors(g.Sources)
	if len(authors) == 0 {
		return g, false
	}
	top1 := Team{FeedID: authors[0].id}
	top2 := UnknownTeam()
	if len(authors) > 1 {
		top2 = Team{FeedID: authors[1].id}
	}

	feedTeams := 0
	for _, team := range g.Teams {
		if !team.FeedID.IsZero() {
			feedTeams++
		}
	}

	if feedTeams >= 2 && g.HasTeam(top1) && (len(authors) == 1 || g.HasTeam(top2)) {
		return g, false
	}
	if feedTeams == len(authors) && g.HasTeam(top1) {
		return g, false
	}

	g.Teams = [2]Team{keepExisting(g.Teams, top1), keepExisting(g.Teams, top2)}
	return g, true
}

func rankFeedAuthors(sources []Source) []authorCount {
	counts := make(map[externalid.ID]int)
	for _, source := range sources {
		if source.Type != SourceFeed || source.AuthorID.IsZero() {
			continue
		}
		counts[source.AuthorID]++
	}

	out := make([]authorCount, 0, len(counts))
	for id, count := range counts {
		out = append(out, authorCount{id: id, count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].id > out[j].id
	})
	return out
}

func keepExisting(teams [2]Team, want Team) Team {
	for _, team := range teams {
		if team.SameAs(want) {
			return team
		}
	}
	return want
}
