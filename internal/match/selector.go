// Package match scores search candidates against the original free-text query
// and picks the best available track.
//
// The heuristic prefers original studio recordings from official channels over
// remixes, live cuts, and covers. A non-empty candidate list always yields a
// selection, even a negative-scored one: the best available track beats
// silently dropping the query, and the caller gets the score to judge
// confidence.
package match

import (
	"strings"

	"ytmb/internal/ytmusic"
)

var remixTerms = []string{"remix", "rmx", "rework", "edit", "bootleg"}

// Score computes the deterministic heuristic score of one candidate against
// the query.
func Score(c ytmusic.Candidate, query string) int {
	score := 0
	title := Fold(c.Title)
	folded := Fold(query)

	if folded != "" && strings.Contains(title, folded) {
		score += 10
	}

	for _, word := range remixTerms {
		if strings.Contains(title, word) {
			score -= 5
			break
		}
	}
	if strings.Contains(title, "live") {
		score -= 3
	}
	if strings.Contains(title, "cover") {
		score -= 4
	}

	for _, artist := range c.ArtistNames {
		if strings.Contains(Fold(artist), "topic") {
			score += 2
			break
		}
	}

	if strings.Contains(folded, "explicit") && c.IsExplicit {
		score++
	}

	return score
}

// SelectBest returns the highest-scoring candidate, ties broken by lowest
// SourceRank, along with its score. Returns nil only for an empty list.
func SelectBest(candidates []ytmusic.Candidate, query string) (*ytmusic.Candidate, int) {
	if len(candidates) == 0 {
		return nil, 0
	}

	best := 0
	bestScore := Score(candidates[0], query)

	for i := 1; i < len(candidates); i++ {
		score := Score(candidates[i], query)
		if score > bestScore || (score == bestScore && candidates[i].SourceRank < candidates[best].SourceRank) {
			best = i
			bestScore = score
		}
	}

	selected := candidates[best]
	return &selected, bestScore
}
