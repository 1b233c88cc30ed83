package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// VectorStore is the narrow contract against the external embedding storage.
// FetchLatest resolves the most recent vector for a user ("latest wins" by
// recency); ok is false on a miss, which is not an error.
type VectorStore interface {
	FetchLatest(ctx context.Context, userID int) ([]float64, bool, error)
	Upsert(ctx context.Context, userID int, vector []float64) error
}

// scoreEmbedding is the embedding personality strategy: cosine similarity of
// the two users' latest vectors mapped to [0,100]. A miss, a store error or a
// timeout on either side degrades to the neutral default instead of failing
// the scoring call.
func scoreEmbedding(ctx context.Context, vectors VectorStore, userA, userB int) int {
	v1, ok, err := vectors.FetchLatest(ctx, userA)
	if err != nil {
		log.Printf("embedding fetch for user %d failed, using neutral score: %v", userA, err)
		return neutralScore
	}
	if !ok {
		return neutralScore
	}
	v2, ok, err := vectors.FetchLatest(ctx, userB)
	if err != nil {
		log.Printf("embedding fetch for user %d failed, using neutral score: %v", userB, err)
		return neutralScore
	}
	if !ok {
		return neutralScore
	}

	sim := cosineSimilarity(v1, v2)
	// Guard against floating-point overshoot before scaling.
	if sim > 1 {
		sim = 1
	}
	if sim < 0 {
		sim = 0
	}
	return int(math.Round(sim * 100))
}

// cosineSimilarity returns dot(v1,v2) / (|v1|*|v2|). Mismatched lengths and
// zero-norm vectors yield 0: a zero vector is valid input, not a fault.
func cosineSimilarity(v1, v2 []float64) float64 {
	if len(v1) != len(v2) {
		return 0
	}
	var dot, norm1, norm2 float64
	for i := range v1 {
		dot += v1[i] * v2[i]
		norm1 += v1[i] * v1[i]
		norm2 += v2[i] * v2[i]
	}
	if norm1 == 0 || norm2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(norm1) * math.Sqrt(norm2))
}

// RedisVectorStore keeps one vector per user under a well-known key. Upsert
// overwrites unconditionally, so the stored vector is always the latest.
type RedisVectorStore struct {
	client *redis.Client
}

func NewRedisVectorStore(addr, password string, db int) *RedisVectorStore {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &RedisVectorStore{client: client}
}

func (s *RedisVectorStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisVectorStore) Close() error {
	return s.client.Close()
}

func vectorKey(userID int) string {
	return fmt.Sprintf("embedding:user:%d", userID)
}

func (s *RedisVectorStore) FetchLatest(ctx context.Context, userID int) ([]float64, bool, error) {
	raw, err := s.client.Get(ctx, vectorKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("fetch embedding for user %d: %w", userID, err)
	}
	var vector []float64
	if err := json.Unmarshal(raw, &vector); err != nil {
		return nil, false, fmt.Errorf("decode embedding for user %d: %w", userID, err)
	}
	return vector, true, nil
}

func (s *RedisVectorStore) Upsert(ctx context.Context, userID int, vector []float64) error {
	payload, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("encode embedding for user %d: %w", userID, err)
	}
	if err := s.client.Set(ctx, vectorKey(userID), payload, 0).Err(); err != nil {
		return fmt.Errorf("store embedding for user %d: %w", userID, err)
	}
	return nil
}
