package services

import (
	"context"
	"math"
	"sort"

	"github.com/trentd187/playmate/internal/models"
)

// matchCandidateLimit caps how many candidates are scored per request. Candidates are
// picked same zone first, then closest skill. That is not the score order: a same-zone
// player far apart in skill (50) is picked ahead of an other-zone player of equal skill
// (70), so with more than matchCandidateLimit players in the zone the latter is never scored.
const matchCandidateLimit = 20

// ConnectionStatusConnected marks a match the viewer already has a live connection with.
const ConnectionStatusConnected = "connected"

// MatchPlayer is the short profile of the player matches are computed for.
type MatchPlayer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Zone string `json:"zone"`
}

// Match is one suggested teammate.
type Match struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Zone             string  `json:"zone"`
	SkillLevel       int     `json:"skill_level"`
	Position         string  `json:"position"`
	Bio              string  `json:"bio"`
	AvatarURL        string  `json:"avatar_url"`
	MatchPercent     int     `json:"match_percent"`
	ConnectionStatus *string `json:"connection_status"` // "connected" or null
}

// MatchResult is the response of GET /api/players/match/:id.
type MatchResult struct {
	Player  MatchPlayer `json:"player"`
	Matches []Match     `json:"matches"`
}

// MatchPercent scores how well two players fit together, 0..100.
//
//	skill_score = max(0, 100 - 15*|skillA - skillB|)
//	zone_score  = 100 if same zone, else 40
//	match       = round(0.5*skill_score + 0.5*zone_score), halves rounded up
func MatchPercent(skillA, skillB int, sameZone bool) int {
	diff := skillA - skillB
	if diff < 0 {
		diff = -diff
	}
	skillScore := 100 - 15*diff
	if skillScore < 0 {
		skillScore = 0
	}
	zoneScore := 40
	if sameZone {
		zoneScore = 100
	}
	// Both scores are non-negative, so math.Round (half away from zero) rounds halves up.
	return int(math.Round(0.5*float64(skillScore) + 0.5*float64(zoneScore)))
}

// Match ranks other non-admin players as teammates for player forID.
// viewerID is the logged-in player (0 when anonymous); results the viewer already
// has a pending or accepted connection with are flagged "connected".
func (s *PlayerService) Match(ctx context.Context, forID, viewerID int64) (*MatchResult, error) {
	target, err := s.Get(ctx, forID)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	connected := map[int64]bool{}
	if viewerID != 0 {
		var others []int64
		err := db.Raw(`
			SELECT CASE WHEN from_player_id = ? THEN to_player_id ELSE from_player_id END
			FROM connections
			WHERE (from_player_id = ? OR to_player_id = ?) AND status <> ?`,
			viewerID, viewerID, viewerID, models.ConnectionStatusRejected,
		).Scan(&others).Error
		if err != nil {
			return nil, internal("load viewer connections", err)
		}
		for _, id := range others {
			connected[id] = true
		}
	}

	var candidates []models.Player
	err = db.Raw(`
		SELECT id, name, zone, skill_level, position, bio, avatar_url
		FROM players
		WHERE id <> ? AND is_admin = ?
		ORDER BY CASE WHEN zone = ? THEN 0 ELSE 1 END, ABS(skill_level - ?), id
		LIMIT ?`,
		target.ID, false, target.Zone, target.SkillLevel, matchCandidateLimit,
	).Scan(&candidates).Error
	if err != nil {
		return nil, internal("load match candidates", err)
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		m := Match{
			ID:           c.ID,
			Name:         c.Name,
			Zone:         c.Zone,
			SkillLevel:   c.SkillLevel,
			Position:     c.Position,
			Bio:          c.Bio,
			AvatarURL:    c.AvatarURL,
			MatchPercent: MatchPercent(target.SkillLevel, c.SkillLevel, c.Zone == target.Zone),
		}
		if connected[c.ID] {
			status := ConnectionStatusConnected
			m.ConnectionStatus = &status
		}
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchPercent > matches[j].MatchPercent
	})

	return &MatchResult{
		Player:  MatchPlayer{ID: target.ID, Name: target.Name, Zone: target.Zone},
		Matches: matches,
	}, nil
}
