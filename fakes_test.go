package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// In-memory store fakes so the engine and handlers can be exercised without
// a live database, redis or language model.

type fakeUser struct {
	identity    identityRow
	preferences *preferencesRow
	personality *personalityRow
}

type fakeProfileStore struct {
	mu    sync.RWMutex
	users map[int]*fakeUser
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{users: make(map[int]*fakeUser)}
}

func (s *fakeProfileStore) add(u *fakeUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.identity.ID] = u
}

func (s *fakeProfileStore) Identity(_ context.Context, userID int) (*identityRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
	}
	row := u.identity
	return &row, nil
}

func (s *fakeProfileStore) Preferences(_ context.Context, userID int) (*preferencesRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok || u.preferences == nil {
		return nil, nil
	}
	row := *u.preferences
	return &row, nil
}

func (s *fakeProfileStore) Personality(_ context.Context, userID int) (*personalityRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok || u.personality == nil {
		return nil, nil
	}
	row := *u.personality
	return &row, nil
}

type fakeMatchStore struct {
	mu       sync.Mutex
	statuses map[int]MatchStatus
	records  []MatchRecord
	nextID   int
	pool     []int
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{statuses: make(map[int]MatchStatus), nextID: 1}
}

func (s *fakeMatchStore) ExistingMatch(_ context.Context, user1, user2 int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if (rec.User1ID == user1 && rec.User2ID == user2) || (rec.User1ID == user2 && rec.User2ID == user1) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeMatchStore) Bind(_ context.Context, rec *MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Mirrors the unique index on the unordered pair.
	for _, existing := range s.records {
		if (existing.User1ID == rec.User1ID && existing.User2ID == rec.User2ID) ||
			(existing.User1ID == rec.User2ID && existing.User2ID == rec.User1ID) {
			return fmt.Errorf("duplicate match record for users %d and %d", rec.User1ID, rec.User2ID)
		}
	}
	stored := *rec
	stored.ID = s.nextID
	s.nextID++
	stored.CreatedAt = time.Now()
	s.records = append(s.records, stored)
	s.statuses[rec.User1ID] = StatusMatched
	s.statuses[rec.User2ID] = StatusMatched
	return nil
}

func (s *fakeMatchStore) SetStatus(_ context.Context, userID int, status MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.statuses[userID]; !ok {
		return fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
	}
	s.statuses[userID] = status
	return nil
}

func (s *fakeMatchStore) Status(_ context.Context, userID int) (MatchStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[userID]
	if !ok {
		return "", fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
	}
	return status, nil
}

func (s *fakeMatchStore) Reset(ctx context.Context, userID int) (MatchStatus, error) {
	previous, err := s.Status(ctx, userID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if previous == StatusMatched {
		for i := range s.records {
			if s.records[i].User1ID == userID || s.records[i].User2ID == userID {
				s.records[i].IsBound = false
			}
		}
	}
	s.statuses[userID] = StatusAvailable
	return previous, nil
}

func (s *fakeMatchStore) History(_ context.Context, userID int) ([]MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []MatchRecord
	for _, rec := range s.records {
		if rec.IsBound && (rec.User1ID == userID || rec.User2ID == userID) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeMatchStore) CandidatePool(_ context.Context, userID, limit int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.pool))
	for _, id := range s.pool {
		if id == userID {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, id)
	}
	return out, nil
}

type fakeVectorStore struct {
	mu      sync.RWMutex
	vectors map[int][]float64
	err     error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{vectors: make(map[int][]float64)}
}

func (s *fakeVectorStore) FetchLatest(_ context.Context, userID int) ([]float64, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vectors[userID]
	return v, ok, nil
}

func (s *fakeVectorStore) Upsert(_ context.Context, userID int, vector []float64) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[userID] = vector
	return nil
}

type fakeNarrator struct {
	response string
	err      error
	prompts  []string
}

func (n *fakeNarrator) GenerateContent(_ context.Context, prompt string) (string, error) {
	n.prompts = append(n.prompts, prompt)
	if n.err != nil {
		return "", n.err
	}
	return n.response, nil
}

type fakeEmbedder struct {
	vector []float64
	err    error
}

func (e *fakeEmbedder) EmbedText(_ context.Context, _ string) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

var errStoreDown = errors.New("store down")

// --- Snapshot and store-row builders ---

// testSnapshot builds a complete, mutually compatible heterosexual snapshot
// that tests tweak per case.
func testSnapshot(userID int, gender Gender, orientation Orientation) *ProfileSnapshot {
	interested := []Gender{GenderFemale}
	if gender == GenderFemale {
		interested = []Gender{GenderMale}
	}
	return &ProfileSnapshot{
		UserID:              userID,
		Name:                fmt.Sprintf("User %d", userID),
		Age:                 25,
		Gender:              gender,
		Orientation:         orientation,
		InterestedInGenders: interested,
		DatingIntentions:    []string{"serious"},
		AgeRange:            AgeRange{Min: 20, Max: 30},
		ExtroversionScore:   defaultExtroversionScore,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

// fakeCompleteUser mirrors testSnapshot at the store-row level so assembled
// snapshots look the same as hand-built ones.
func fakeCompleteUser(userID int, gender Gender, orientation Orientation) *fakeUser {
	interested := "female"
	if gender == GenderFemale {
		interested = "male"
	}
	return &fakeUser{
		identity: identityRow{
			ID:          userID,
			Name:        fmt.Sprintf("User %d", userID),
			Age:         25,
			Gender:      string(gender),
			Orientation: string(orientation),
			MatchStatus: string(StatusAvailable),
		},
		preferences: &preferencesRow{
			InterestedInGenders: []string{interested},
			DatingIntentions:    []string{"serious"},
			AgeMin:              nullInt(20),
			AgeMax:              nullInt(30),
		},
	}
}

func makeToken(t *testing.T, userID int) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"expires": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}
