package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
)

// candidatePoolLimit caps how many available users get scored per
// recommendation request.
const candidatePoolLimit = 100

type pairRequest struct {
	User1ID int `json:"user1_id"`
	User2ID int `json:"user2_id"`
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found")
	case errors.Is(err, ErrMalformedProfile):
		writeError(w, http.StatusBadRequest, "malformed_profile")
	case errors.Is(err, ErrInvalidPair):
		writeError(w, http.StatusBadRequest, "incompatible_pair")
	default:
		log.Println("Engine error:", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

// POST /matching/check-compatibility
func checkCompatibilityHandler(engine *Engine) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		var req pairRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.User1ID == 0 || req.User2ID == 0 {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		if req.User1ID == req.User2ID {
			writeError(w, http.StatusBadRequest, "self_match")
			return
		}

		ctx := r.Context()
		a, err := engine.Assembler().Assemble(ctx, req.User1ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		b, err := engine.Assembler().Assemble(ctx, req.User2ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		if !isEligible(a, b) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success":       true,
				"user1_id":      req.User1ID,
				"user2_id":      req.User2ID,
				"eligible":      false,
				"is_compatible": false,
			})
			return
		}

		score, err := engine.Score(ctx, a, b)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":         true,
			"user1_id":        req.User1ID,
			"user2_id":        req.User2ID,
			"eligible":        true,
			"match_score":     score.Overall,
			"score_breakdown": score.Breakdown,
			"is_compatible":   score.Overall >= minBindScore,
		})
	})
}

// GET /matching/recommendations?min_score=50&count=5
func recommendationsHandler(engine *Engine, matches MatchStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		minScore := minBindScore
		if raw := r.URL.Query().Get("min_score"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				minScore = v
			}
		}
		count := defaultRecommendationCount
		if raw := r.URL.Query().Get("count"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v > 0 {
				count = v
			}
		}

		ctx := r.Context()
		pool, err := matches.CandidatePool(ctx, userID, candidatePoolLimit)
		if err != nil {
			log.Println("Error fetching candidate pool:", err)
			writeError(w, http.StatusInternalServerError, "candidate_pool_error")
			return
		}

		recommendations, err := engine.Recommend(ctx, userID, pool, minScore, count)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if recommendations == nil {
			recommendations = []Recommendation{}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":              true,
			"user_id":              userID,
			"recommendations":      recommendations,
			"recommendation_count": len(recommendations),
			"min_score_threshold":  minScore,
		})
	})
}

// POST /matching/bind-matched-users
//
// The score is recomputed server-side: binding requires a fresh overall of at
// least minBindScore, at most one record exists per unordered pair, and both
// users move to matched atomically.
func bindMatchedUsersHandler(engine *Engine, matches MatchStore, narrator Narrator) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		var req pairRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.User1ID == 0 || req.User2ID == 0 {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		if req.User1ID == req.User2ID {
			writeError(w, http.StatusBadRequest, "self_match")
			return
		}

		ctx := r.Context()
		bound, err := matches.ExistingMatch(ctx, req.User1ID, req.User2ID)
		if err != nil {
			log.Println("Error checking existing match:", err)
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if bound {
			writeError(w, http.StatusBadRequest, "already_matched")
			return
		}

		a, b, score, err := engine.ScorePair(ctx, req.User1ID, req.User2ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if score.Overall < minBindScore {
			writeError(w, http.StatusBadRequest, "score_below_threshold")
			return
		}

		analysis := generateMatchAnalysis(ctx, narrator, a, b, score)
		rec := &MatchRecord{
			User1ID:   req.User1ID,
			User2ID:   req.User2ID,
			Score:     score.Overall,
			Breakdown: score.Breakdown,
			Analysis:  analysis,
			IsBound:   true,
		}
		if err := matches.Bind(ctx, rec); err != nil {
			log.Println("Error binding matched users:", err)
			writeError(w, http.StatusInternalServerError, "bind_error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":         true,
			"message":         "Users successfully bound together",
			"match_score":     score.Overall,
			"score_breakdown": score.Breakdown,
			"match_analysis":  analysis,
			"user1": map[string]interface{}{
				"id":                  a.UserID,
				"name":                a.Name,
				"personality_summary": generatePersonalitySummary(ctx, narrator, a),
			},
			"user2": map[string]interface{}{
				"id":                  b.UserID,
				"name":                b.Name,
				"personality_summary": generatePersonalitySummary(ctx, narrator, b),
			},
		})
	})
}

// PUT /matching/update-match-status
func updateMatchStatusHandler(matches MatchStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		type statusRequest struct {
			UserID int    `json:"user_id"`
			Status string `json:"match_status"`
		}
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.UserID == 0 || req.Status == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		if !validMatchStatus(req.Status) {
			writeError(w, http.StatusBadRequest, "invalid_match_status")
			return
		}

		if err := matches.SetStatus(r.Context(), req.UserID, MatchStatus(req.Status)); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user_not_found")
				return
			}
			log.Println("Error updating match status:", err)
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"user_id":      req.UserID,
			"match_status": req.Status,
		})
	})
}

// PUT /matching/reset-match-status
//
// matched -> available releases the bound records so the pair may be
// re-evaluated; resetting an already available user is a no-op.
func resetMatchStatusHandler(matches MatchStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		type resetRequest struct {
			UserID int `json:"user_id"`
		}
		var req resetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.UserID == 0 {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}

		previous, err := matches.Reset(r.Context(), req.UserID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user_not_found")
				return
			}
			log.Println("Error resetting match status:", err)
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":         true,
			"user_id":         req.UserID,
			"match_status":    StatusAvailable,
			"previous_status": previous,
		})
	})
}

// GET /matching/match-history
func matchHistoryHandler(matches MatchStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		userID := r.Context().Value(userIDKey).(int)

		records, err := matches.History(r.Context(), userID)
		if err != nil {
			log.Println("Error fetching match history:", err)
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if records == nil {
			records = []MatchRecord{}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":       true,
			"user_id":       userID,
			"match_history": records,
		})
	})
}

// POST /matching/generate-embedding
//
// Embeds the user's profile text and upserts the vector; the stored vector is
// always the latest. Scoring never calls this, it only reads what is here.
func generateEmbeddingHandler(engine *Engine, embedder Embedder, vectors VectorStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		if embedder == nil || vectors == nil {
			writeError(w, http.StatusServiceUnavailable, "embedding_unavailable")
			return
		}
		type embedRequest struct {
			UserID int `json:"user_id"`
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.UserID == 0 {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}

		ctx := r.Context()
		snapshot, err := engine.Assembler().Assemble(ctx, req.UserID)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		vector, err := embedder.EmbedText(ctx, profileEmbeddingText(snapshot))
		if err != nil {
			log.Println("Error generating embedding:", err)
			writeError(w, http.StatusInternalServerError, "embedding_error")
			return
		}
		if err := vectors.Upsert(ctx, req.UserID, vector); err != nil {
			log.Println("Error storing embedding:", err)
			writeError(w, http.StatusInternalServerError, "embedding_store_error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"user_id": req.UserID,
		})
	})
}

// POST /matching/generate-personal-summary
func generatePersonalSummaryHandler(engine *Engine, narrator Narrator) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "invalid_method")
			return
		}
		type summaryRequest struct {
			UserID       int `json:"user_id"`
			TargetUserID int `json:"target_user_id"`
		}
		var req summaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.UserID == 0 || req.TargetUserID == 0 {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}

		ctx := r.Context()
		user, err := engine.Assembler().Assemble(ctx, req.UserID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		target, err := engine.Assembler().Assemble(ctx, req.TargetUserID)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":             true,
			"personality_summary": generatePersonalitySummary(ctx, narrator, user),
			"dating_advice":       generateDatingAdvice(ctx, narrator, user, target),
		})
	})
}
