package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var db *sql.DB

func initDB() {
	// Get database URL from environment variable, fallback to default for development
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		connStr = "user=admin password=password dbname=amouradb sslmode=disable"
		log.Default().Println("Warning: DATABASE_URL not set, using default connection string")
	}

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Error connecting to the database:", err)
	}
	err = db.Ping()
	if err != nil {
		log.Fatal("Cannot reach the database:", err)
	}
	log.Default().Println("Database connection established successfully")

	ensureMatchSchema()
}

// ensureMatchSchema creates the match-record table if missing. The user,
// preference and personality tables are provisioned by the onboarding
// service's migrations and only read here.
func ensureMatchSchema() {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS user_matches (
            id SERIAL PRIMARY KEY,
            user1_id INTEGER NOT NULL,
            user2_id INTEGER NOT NULL,
            match_score INTEGER NOT NULL,
            score_breakdown JSONB,
            match_analysis TEXT,
            is_bound BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMP NOT NULL DEFAULT NOW()
        )
    `)
	if err != nil {
		log.Fatal("Cannot ensure user_matches table:", err)
	}

	// One record per unordered pair, enforced in the database so two
	// concurrent binds of the same pair cannot both pass the existence check
	// and insert.
	_, err = db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS user_matches_pair_key
        ON user_matches (LEAST(user1_id, user2_id), GREATEST(user1_id, user2_id))
    `)
	if err != nil {
		log.Fatal("Cannot ensure user_matches pair index:", err)
	}
}
