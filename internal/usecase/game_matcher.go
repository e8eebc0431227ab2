package usecase

import (
	"fmt"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/domain/game"
	"github.com/riskibarqy/ultimate-scores/internal/domain/post"
	idgen "github.com/riskibarqy/ultimate-scores/internal/platform/id"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

const (
	DefaultMatchThreshold = 0.4
	strictMatchThreshold  = 1.0
)

type MatchConfig struct {
	Threshold  float64
	StrictMode bool
	Window     time.Duration
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Threshold: DefaultMatchThreshold,
		Window:    game.DefaultConsistencyWait,
	}
}

func (c MatchConfig) threshold() float64 {
	if c.StrictMode {
		return strictMatchThreshold
	}
	return c.Threshold
}

func (c MatchConfig) window() time.Duration {
	if c.Window <= 0 {
		return game.DefaultConsistencyWait
	}
	return c.Window
}

type MatchOutcome string

const (
	MatchCreated   MatchOutcome = "created"
	MatchAppended  MatchOutcome = "appended"
	MatchDuplicate MatchOutcome = "duplicate"
)

// GamePool holds the candidate games of one cycle, the loaded window plus
// every game created while matching, and tracks which ones must be persisted.
type GamePool struct {
	games   []game.Game
	created map[string]struct{}
	changed map[string]struct{}
}

func NewGamePool(existing []game.Game) *GamePool {
	games := make([]game.Game, 0, len(existing))
	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		games = append(games, item)
	}
	return &GamePool{
		games:   games,
		created: make(map[string]struct{}),
		changed: make(map[string]struct{}),
	}
}

func (p *GamePool) Games() []game.Game {
	out := make([]game.Game, len(p.games))
	copy(out, p.games)
	return out
}

// Dirty returns created and modified games in pool order.
func (p *GamePool) Dirty() []game.Game {
	out := make([]game.Game, 0, len(p.changed))
	for _, item := range p.games {
		if _, ok := p.changed[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

func (p *GamePool) CreatedCount() int {
	return len(p.created)
}

// UpdatedCount counts modified games that existed before the cycle.
func (p *GamePool) UpdatedCount() int {
	count := 0
	for id := range p.changed {
		if _, ok := p.created[id]; !ok {
			count++
		}
	}
	return count
}

func (p *GamePool) add(item game.Game) {
	p.games = append(p.games, item)
	p.created[item.ID] = struct{}{}
	p.changed[item.ID] = struct{}{}
}

func (p *GamePool) markChanged(idx int) {
	p.changed[p.games[idx].ID] = struct{}{}
}

// Reconcile runs the team consistency pass over every pooled game.
func (p *GamePool) Reconcile() int {
	count := 0
	for i := range p.games {
		next, changed := game.ReconcileTeams(p.games[i])
		if !changed {
			continue
		}
		p.games[i] = next
		p.markChanged(i)
		count++
	}
	return count
}

// GameMatcher decides whether an observation joins an existing game or
// starts a new one.
type GameMatcher struct {
	cfg        MatchConfig
	gameIDs    idgen.Generator
	tourneyIDs idgen.Generator
	logger     *logging.Logger
}

func NewGameMatcher(cfg MatchConfig, gameIDs, tourneyIDs idgen.Generator, logger *logging.Logger) *GameMatcher {
	if gameIDs == nil {
		gameIDs = idgen.NewPrefixedGenerator(game.IDPrefix)
	}
	if tourneyIDs == nil {
		tourneyIDs = idgen.NewPrefixedGenerator(game.TournamentIDPrefix)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &GameMatcher{
		cfg:        cfg,
		gameIDs:    gameIDs,
		tourneyIDs: tourneyIDs,
		logger:     logger,
	}
}

// AddObservation applies obs to the pool. Below the threshold a new game is
// created; the existing game is never overwritten on ambiguity.
func (m *GameMatcher) AddObservation(obs game.Observation, classification game.Classification, pool *GamePool) (MatchOutcome, error) {
	if obs.Scores == nil {
		return "", fmt.Errorf("%w: observation %s has no scores", ErrInvalidInput, obs.PostID)
	}

	for i := range pool.games {
		if pool.games[i].HasPost(obs.PostID) {
			return MatchDuplicate, nil
		}
	}

	confidence, idx := game.FindMostConsistentGame(obs, pool.games, m.cfg.window())
	if idx < 0 || confidence < m.cfg.threshold() {
		gameID, err := m.gameIDs.NewID()
		if err != nil {
			return "", fmt.Errorf("generate game id: %w", err)
		}
		tourneyID, err := m.tourneyIDs.NewID()
		if err != nil {
			return "", fmt.Errorf("generate tournament id: %w", err)
		}
		pool.add(game.NewFromSource(gameID, tourneyID, obs.Teams, classification, obs.Source()))
		m.logger.Debug("created game from observation",
			"game_id", gameID,
			"post_id", obs.PostID.Int64(),
			"confidence", confidence,
		)
		return MatchCreated, nil
	}

	target := &pool.games[idx]
	target.AddSource(obs.Source())
	if teams, merged := game.MergeTeams(target.Teams, obs.Teams); merged {
		target.Teams = teams
	}
	pool.markChanged(idx)
	m.logger.Debug("appended observation to game",
		"game_id", target.ID,
		"post_id", obs.PostID.Int64(),
		"confidence", confidence,
	)
	return MatchAppended, nil
}

// BuildObservation turns a stored post into an observation. It reports false
// for posts without a score pair.
func BuildObservation(item post.Post, lookup *AuthorLookup) (game.Observation, bool) {
	scores, ok := item.Scores()
	if !ok {
		return game.Observation{}, false
	}

	author, classification, _ := lookup.Team(item.AuthorID)
	opponent, found := lookup.Opponent(item, classification)

	obs := game.Observation{
		PostID:     item.ID,
		AuthorID:   item.AuthorID,
		Teams:      [2]game.Team{author, opponent},
		Scores:     &scores,
		ObservedAt: item.CreatedAt,
		Kind:       game.ObservationSocial,
		RawText:    item.Text,
	}
	if found {
		obs.MentionedID = opponent.FeedID
	}
	return obs, true
}
