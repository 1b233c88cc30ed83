package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/amoura/backend/gemini"
	"github.com/joho/godotenv"
)

// JWT secret from environment variable or fallback
func getJWTSecret() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("your_secret_key_please_change_in_production")
}

var jwtSecret = getJWTSecret()

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	jwtSecret = getJWTSecret()

	initDB()

	profiles := NewPgProfileStore(db)
	matches := NewPgMatchStore(db)

	// Vector store is optional: without it the engine runs the heuristic
	// personality strategy.
	var vectors VectorStore
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB := 0
		if raw := os.Getenv("REDIS_DB"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				redisDB = v
			}
		}
		store := NewRedisVectorStore(addr, os.Getenv("REDIS_PASSWORD"), redisDB)
		if err := store.Ping(context.Background()); err != nil {
			log.Println("Warning: redis unreachable, embedding strategy disabled:", err)
		} else {
			vectors = store
			log.Println("Vector store connected at", addr)
		}
	}

	strategy := PersonalityStrategy(os.Getenv("PERSONALITY_STRATEGY"))
	engine := NewEngine(profiles, vectors, strategy)
	log.Printf("Scoring engine ready: strategy=%s, weight table v%d", engine.strategy, weightTableVersion)

	// Gemini is optional: without it narration falls back to canned text and
	// embedding refresh is unavailable.
	var narrator Narrator
	var embedder Embedder
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := gemini.NewClient(context.Background(),
			apiKey, os.Getenv("GEMINI_MODEL"), os.Getenv("GEMINI_EMBED_MODEL"))
		if err != nil {
			log.Println("Warning: gemini client disabled:", err)
		} else {
			narrator = client
			embedder = client
			log.Println("Gemini narration enabled with model", client.Model())
		}
	}

	mux := http.NewServeMux()

	// Core auth endpoints
	mux.Handle("/register", registerHandler(db))
	mux.Handle("/login", loginHandler(db))

	// Scoring & recommendations
	mux.Handle("/matching/check-compatibility", checkCompatibilityHandler(engine))
	mux.Handle("/matching/recommendations", recommendationsHandler(engine, matches))

	// Match lifecycle
	mux.Handle("/matching/bind-matched-users", bindMatchedUsersHandler(engine, matches, narrator))
	mux.Handle("/matching/update-match-status", updateMatchStatusHandler(matches))
	mux.Handle("/matching/reset-match-status", resetMatchStatusHandler(matches))
	mux.Handle("/matching/match-history", matchHistoryHandler(matches))

	// Embedding refresh & narrative collaborators
	mux.Handle("/matching/generate-embedding", generateEmbeddingHandler(engine, embedder, vectors))
	mux.Handle("/matching/generate-personal-summary", generatePersonalSummaryHandler(engine, narrator))

	// Health check endpoint for Docker
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Default().Println("Starting Amoura matching backend on port " + port + "...")
	http.ListenAndServe(":"+port, withCORS(mux))
}
