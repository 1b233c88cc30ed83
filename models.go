package main

import "time"

// Gender and Orientation are closed enumerations. Free-text values are
// rejected at the assembler boundary so the scorers never see them.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Orientation string

const (
	OrientationHeterosexual Orientation = "heterosexual"
	OrientationHomosexual   Orientation = "homosexual"
	OrientationBisexual     Orientation = "bisexual"
	OrientationOther        Orientation = "other"
)

// MatchStatus is the externally owned availability state of a user.
// available -> matched happens on binding; matched -> available on reset;
// unavailable only by an explicit status update.
type MatchStatus string

const (
	StatusAvailable   MatchStatus = "available"
	StatusUnavailable MatchStatus = "unavailable"
	StatusMatched     MatchStatus = "matched"
)

// minBindScore is the single threshold shared by the binding endpoint and the
// ranker's default min_score.
const minBindScore = 50

const defaultRecommendationCount = 5

// AgeRange is a user's stated partner age preference, Min <= Max.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ProfileSnapshot is an immutable view of one user's matchable attributes,
// assembled fresh for every scoring call. Missing optional fields are empty,
// never nil, so every scorer stays a total function.
type ProfileSnapshot struct {
	UserID      int
	Name        string
	Age         int
	Gender      Gender
	Orientation Orientation

	InterestedInGenders []Gender
	DatingIntentions    []string
	PreferredAreas      []string
	AgeRange            AgeRange

	AboutMe     string
	Hobbies     string
	Lifestyle   string
	Values      string
	FutureGoals string
	PerfectDate string

	MBTI              string
	ExtroversionScore int
}

// Dimension names, also the keys of every MatchScore breakdown.
const (
	DimBasicPreference = "basic_preference"
	DimAge             = "age"
	DimLocation        = "location"
	DimInterests       = "interests"
	DimValues          = "values"
	DimPersonality     = "personality_or_embedding"
)

// MatchScore is produced fresh per evaluation and never mutated.
type MatchScore struct {
	Overall   int            `json:"overall"`
	Breakdown map[string]int `json:"breakdown"`
}

// MatchRecord is the persisted outcome of binding two users. At most one
// record exists per unordered pair; once IsBound is false the pair may be
// re-evaluated.
type MatchRecord struct {
	ID        int            `json:"id"`
	User1ID   int            `json:"user1_id"`
	User2ID   int            `json:"user2_id"`
	Score     int            `json:"match_score"`
	Breakdown map[string]int `json:"score_breakdown"`
	Analysis  string         `json:"match_analysis,omitempty"`
	IsBound   bool           `json:"is_bound"`
	CreatedAt time.Time      `json:"created_at"`
}

func validMatchStatus(s string) bool {
	switch MatchStatus(s) {
	case StatusAvailable, StatusUnavailable, StatusMatched:
		return true
	}
	return false
}
