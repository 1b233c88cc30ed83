package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidPair is returned when a self-pair or an orientation-incompatible
// pair reaches the aggregator directly, bypassing the gate. That is a
// programming error at the call site, not a runtime condition, so it fails
// loudly instead of silently scoring.
var ErrInvalidPair = errors.New("invalid pair")

// PersonalityStrategy selects how the sixth dimension is computed. The
// strategy is fixed at engine construction, never per call site, so every
// scoring path in the system agrees on its semantics.
type PersonalityStrategy string

const (
	StrategyHeuristic PersonalityStrategy = "heuristic"
	StrategyEmbedding PersonalityStrategy = "embedding"
)

// dimensionWeights is the canonical weight table, version 1. The weights sum
// to exactly 1.0, so the weighted sum of 0-100 sub-scores is already a 0-100
// overall and needs no further normalization.
const weightTableVersion = 1

var dimensionWeights = map[string]float64{
	DimBasicPreference: 0.30,
	DimAge:             0.15,
	DimLocation:        0.10,
	DimInterests:       0.15,
	DimValues:          0.15,
	DimPersonality:     0.15,
}

// dimensionOrder fixes the summation order of the weighted sub-scores.
// Floating-point addition is not associative, so summing in map-iteration
// order could round a half-point total differently between calls.
var dimensionOrder = [...]string{
	DimBasicPreference,
	DimAge,
	DimLocation,
	DimInterests,
	DimValues,
	DimPersonality,
}

// defaultEmbedTimeout bounds a single embedding lookup during scoring; on
// expiry the dimension falls back to the neutral default.
const defaultEmbedTimeout = 3 * time.Second

// Engine is the compatibility scoring core. All dependencies are injected
// and hidden behind narrow interfaces; the engine itself holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	assembler    *Assembler
	vectors      VectorStore
	strategy     PersonalityStrategy
	embedTimeout time.Duration
}

// NewEngine builds an engine. vectors may be nil for the heuristic strategy;
// requesting the embedding strategy without a vector store falls back to the
// heuristic so the engine stays total.
func NewEngine(profiles ProfileStore, vectors VectorStore, strategy PersonalityStrategy) *Engine {
	if strategy != StrategyEmbedding || vectors == nil {
		strategy = StrategyHeuristic
	}
	return &Engine{
		assembler:    NewAssembler(profiles),
		vectors:      vectors,
		strategy:     strategy,
		embedTimeout: defaultEmbedTimeout,
	}
}

func (e *Engine) Assembler() *Assembler {
	return e.assembler
}

// Score evaluates an eligible pair of snapshots. It is deterministic and
// side-effect free: inputs are never mutated, nothing is persisted, and no
// language model is consulted.
func (e *Engine) Score(ctx context.Context, a, b *ProfileSnapshot) (MatchScore, error) {
	if !isEligible(a, b) {
		return MatchScore{}, fmt.Errorf("%w: users %d and %d", ErrInvalidPair, a.UserID, b.UserID)
	}

	breakdown := map[string]int{
		DimBasicPreference: scoreBasicPreference(a, b),
		DimAge:             scoreAge(a, b),
		DimLocation:        scoreLocation(a, b),
		DimInterests:       scoreInterests(a, b),
		DimValues:          scoreValues(a, b),
		DimPersonality:     e.personalityScore(ctx, a, b),
	}

	return MatchScore{
		Overall:   overallScore(breakdown),
		Breakdown: breakdown,
	}, nil
}

func overallScore(breakdown map[string]int) int {
	var weighted float64
	for _, dim := range dimensionOrder {
		weighted += dimensionWeights[dim] * float64(breakdown[dim])
	}
	return int(math.Round(weighted))
}

// ScorePair assembles both snapshots fresh and scores them.
func (e *Engine) ScorePair(ctx context.Context, userA, userB int) (*ProfileSnapshot, *ProfileSnapshot, MatchScore, error) {
	a, err := e.assembler.Assemble(ctx, userA)
	if err != nil {
		return nil, nil, MatchScore{}, err
	}
	b, err := e.assembler.Assemble(ctx, userB)
	if err != nil {
		return nil, nil, MatchScore{}, err
	}
	score, err := e.Score(ctx, a, b)
	if err != nil {
		return nil, nil, MatchScore{}, err
	}
	return a, b, score, nil
}

func (e *Engine) personalityScore(ctx context.Context, a, b *ProfileSnapshot) int {
	if e.strategy == StrategyEmbedding {
		ctx, cancel := context.WithTimeout(ctx, e.embedTimeout)
		defer cancel()
		return scoreEmbedding(ctx, e.vectors, a.UserID, b.UserID)
	}
	return scorePersonalityHeuristic(a, b)
}
