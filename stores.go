package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// ProfileStore reads the scattered per-user records the assembler folds into
// one snapshot. Identity is the only mandatory record; the others return nil
// when absent since onboarding is progressive.
type ProfileStore interface {
	Identity(ctx context.Context, userID int) (*identityRow, error)
	Preferences(ctx context.Context, userID int) (*preferencesRow, error)
	Personality(ctx context.Context, userID int) (*personalityRow, error)
}

type identityRow struct {
	ID          int
	Name        string
	Age         int
	Gender      string
	Orientation string
	MBTI        sql.NullString
	MatchStatus string
}

type preferencesRow struct {
	InterestedInGenders []string
	DatingIntentions    []string
	PreferredAreas      []string
	AgeMin              sql.NullInt64
	AgeMax              sql.NullInt64
}

type personalityRow struct {
	AboutMe      sql.NullString
	Hobbies      sql.NullString
	Lifestyle    sql.NullString
	Values       sql.NullString
	FutureGoals  sql.NullString
	PerfectDate  sql.NullString
	Extroversion sql.NullInt64
}

// MatchStore owns the match-record lifecycle and the user availability state.
type MatchStore interface {
	ExistingMatch(ctx context.Context, user1, user2 int) (bool, error)
	Bind(ctx context.Context, rec *MatchRecord) error
	SetStatus(ctx context.Context, userID int, status MatchStatus) error
	Status(ctx context.Context, userID int) (MatchStatus, error)
	Reset(ctx context.Context, userID int) (MatchStatus, error)
	History(ctx context.Context, userID int) ([]MatchRecord, error)
	CandidatePool(ctx context.Context, userID, limit int) ([]int, error)
}

// --- Postgres implementations ---

type pgProfileStore struct {
	db *sql.DB
}

func NewPgProfileStore(db *sql.DB) ProfileStore {
	return &pgProfileStore{db: db}
}

func (s *pgProfileStore) Identity(ctx context.Context, userID int) (*identityRow, error) {
	var row identityRow
	err := s.db.QueryRowContext(ctx, `
        SELECT id, COALESCE(name, ''), COALESCE(age, 0),
               COALESCE(gender, ''), COALESCE(sexual_orientation, ''),
               mbti, COALESCE(match_status, 'available')
        FROM users
        WHERE id = $1
    `, userID).Scan(&row.ID, &row.Name, &row.Age, &row.Gender, &row.Orientation, &row.MBTI, &row.MatchStatus)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
	} else if err != nil {
		return nil, fmt.Errorf("fetch identity for user %d: %w", userID, err)
	}
	return &row, nil
}

func (s *pgProfileStore) Preferences(ctx context.Context, userID int) (*preferencesRow, error) {
	var row preferencesRow
	err := s.db.QueryRowContext(ctx, `
        SELECT interested_in_genders, dating_intentions, preferred_areas, age_min, age_max
        FROM user_preferences
        WHERE user_id = $1
    `, userID).Scan(
		pq.Array(&row.InterestedInGenders),
		pq.Array(&row.DatingIntentions),
		pq.Array(&row.PreferredAreas),
		&row.AgeMin, &row.AgeMax,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("fetch preferences for user %d: %w", userID, err)
	}
	return &row, nil
}

func (s *pgProfileStore) Personality(ctx context.Context, userID int) (*personalityRow, error) {
	var row personalityRow
	err := s.db.QueryRowContext(ctx, `
        SELECT about_me, hobbies, lifestyle, values, future_goals, perfect_date, extroversion_score
        FROM user_personality
        WHERE user_id = $1
    `, userID).Scan(
		&row.AboutMe, &row.Hobbies, &row.Lifestyle, &row.Values,
		&row.FutureGoals, &row.PerfectDate, &row.Extroversion,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("fetch personality for user %d: %w", userID, err)
	}
	return &row, nil
}

type pgMatchStore struct {
	db *sql.DB
}

func NewPgMatchStore(db *sql.DB) MatchStore {
	return &pgMatchStore{db: db}
}

func (s *pgMatchStore) ExistingMatch(ctx context.Context, user1, user2 int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM user_matches
            WHERE (user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1)
        )
    `, user1, user2).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing match: %w", err)
	}
	return exists, nil
}

// Bind inserts the match record and flips both users to matched in one
// transaction, so a half-bound pair can never be observed.
func (s *pgMatchStore) Bind(ctx context.Context, rec *MatchRecord) error {
	breakdown, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return fmt.Errorf("encode score breakdown: %w", err)
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO user_matches (user1_id, user2_id, match_score, score_breakdown, match_analysis, is_bound)
            VALUES ($1, $2, $3, $4, $5, TRUE)
        `, rec.User1ID, rec.User2ID, rec.Score, breakdown, rec.Analysis)
		if err != nil {
			return fmt.Errorf("insert match record: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
            UPDATE users
            SET match_status = 'matched', status_updated_at = NOW(), matched_at = NOW()
            WHERE id IN ($1, $2)
        `, rec.User1ID, rec.User2ID)
		if err != nil {
			return fmt.Errorf("mark users matched: %w", err)
		}
		return nil
	})
}

func (s *pgMatchStore) SetStatus(ctx context.Context, userID int, status MatchStatus) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE users
        SET match_status = $1, status_updated_at = NOW()
        WHERE id = $2
    `, string(status), userID)
	if err != nil {
		return fmt.Errorf("update match status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
	}
	return nil
}

func (s *pgMatchStore) Status(ctx context.Context, userID int) (MatchStatus, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(match_status, 'available') FROM users WHERE id = $1`, userID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
	} else if err != nil {
		return "", fmt.Errorf("fetch match status: %w", err)
	}
	return MatchStatus(status), nil
}

// Reset returns the user to available. A previously matched user also gets
// their bound records released so the pair can be re-evaluated later.
func (s *pgMatchStore) Reset(ctx context.Context, userID int) (MatchStatus, error) {
	previous, err := s.Status(ctx, userID)
	if err != nil {
		return "", err
	}
	if previous == StatusAvailable {
		return previous, nil
	}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
            UPDATE users
            SET match_status = 'available', status_updated_at = NOW(), matched_at = NULL
            WHERE id = $1
        `, userID)
		if err != nil {
			return fmt.Errorf("reset match status: %w", err)
		}
		if previous == StatusMatched {
			_, err = tx.ExecContext(ctx, `
                UPDATE user_matches
                SET is_bound = FALSE
                WHERE (user1_id = $1 OR user2_id = $1) AND is_bound = TRUE
            `, userID)
			if err != nil {
				return fmt.Errorf("unbind match records: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

func (s *pgMatchStore) History(ctx context.Context, userID int) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user1_id, user2_id, match_score, COALESCE(score_breakdown, '{}'::jsonb),
               COALESCE(match_analysis, ''), is_bound, created_at
        FROM user_matches
        WHERE (user1_id = $1 OR user2_id = $1) AND is_bound = TRUE
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch match history: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var rec MatchRecord
		var breakdown []byte
		if err := rows.Scan(&rec.ID, &rec.User1ID, &rec.User2ID, &rec.Score,
			&breakdown, &rec.Analysis, &rec.IsBound, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match record: %w", err)
		}
		if err := json.Unmarshal(breakdown, &rec.Breakdown); err != nil {
			rec.Breakdown = map[string]int{}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CandidatePool returns available users with submitted forms, excluding
// anyone the user already shares a match record with plus indirect
// connections through those prior matches. The pool is ordered (newest users
// first) and handed to the ranker as-is; ties in ranking keep this order.
func (s *pgMatchStore) CandidatePool(ctx context.Context, userID, limit int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT DISTINCT u.id, u.created_at
        FROM users u
        WHERE u.id != $1
          AND u.form_submitted = TRUE
          AND u.match_status = 'available'
          AND u.id NOT IN (
              SELECT user1_id FROM user_matches WHERE user2_id = $1
              UNION
              SELECT user2_id FROM user_matches WHERE user1_id = $1
          )
          AND u.id NOT IN (
              SELECT user1_id FROM user_matches WHERE user2_id IN (
                  SELECT user1_id FROM user_matches WHERE user2_id = $1
                  UNION
                  SELECT user2_id FROM user_matches WHERE user1_id = $1
              )
              UNION
              SELECT user2_id FROM user_matches WHERE user1_id IN (
                  SELECT user1_id FROM user_matches WHERE user2_id = $1
                  UNION
                  SELECT user2_id FROM user_matches WHERE user1_id = $1
              )
          )
        ORDER BY u.created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate pool: %w", err)
	}
	defer rows.Close()

	var pool []int
	for rows.Next() {
		var id int
		var createdAt sql.NullTime
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		pool = append(pool, id)
	}
	return pool, rows.Err()
}
