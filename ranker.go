package main

import (
	"context"
	"errors"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"
)

// rankerConcurrency bounds the candidate fan-out so a large pool cannot
// exhaust database connections.
const rankerConcurrency = 8

// Recommendation pairs a candidate with the score that put them on the list.
type Recommendation struct {
	UserID int        `json:"user_id"`
	Name   string     `json:"name"`
	Age    int        `json:"age"`
	Gender Gender     `json:"gender"`
	MBTI   string     `json:"mbti,omitempty"`
	Score  MatchScore `json:"match_score"`
}

// Recommend scores every candidate in the pool against the user and returns
// the top count candidates with overall >= minScore, sorted descending.
//
// The pool is assembled by an external collaborator that already excludes
// matched and unavailable users, but the gate is re-applied here so a stray
// excluded user handed in by mistake is never silently re-included. Ties keep
// pool order, so identical inputs always yield identical output. Candidates
// whose identity record is missing or malformed are dropped with a logged
// skip; only infrastructure failures abort the batch.
func (e *Engine) Recommend(ctx context.Context, userID int, pool []int, minScore, count int) ([]Recommendation, error) {
	if count <= 0 {
		count = defaultRecommendationCount
	}

	self, err := e.assembler.Assemble(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]*Recommendation, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rankerConcurrency)

	for i, candidateID := range pool {
		g.Go(func() error {
			if candidateID == userID {
				return nil
			}
			candidate, err := e.assembler.Assemble(gctx, candidateID)
			if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrMalformedProfile) {
				log.Printf("skipping candidate %d: %v", candidateID, err)
				return nil
			} else if err != nil {
				return err
			}
			if !isEligible(self, candidate) {
				return nil
			}
			score, err := e.Score(gctx, self, candidate)
			if err != nil {
				// Cannot happen for a gated pair; skip rather than fail the batch.
				log.Printf("skipping candidate %d: %v", candidateID, err)
				return nil
			}
			if score.Overall < minScore {
				return nil
			}
			results[i] = &Recommendation{
				UserID: candidate.UserID,
				Name:   candidate.Name,
				Age:    candidate.Age,
				Gender: candidate.Gender,
				MBTI:   candidate.MBTI,
				Score:  score,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Collect in pool order, then stable-sort: equal scores keep pool order.
	kept := make([]Recommendation, 0, len(pool))
	for _, r := range results {
		if r != nil {
			kept = append(kept, *r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score.Overall > kept[j].Score.Overall
	})

	if len(kept) > count {
		kept = kept[:count]
	}
	return kept, nil
}
