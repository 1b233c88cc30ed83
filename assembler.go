package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUserNotFound means the base identity record is missing. It is fatal
	// for a single scoring call but never aborts a batch ranking.
	ErrUserNotFound = errors.New("user not found")

	// ErrMalformedProfile flags stored data that violates the snapshot
	// invariants (negative age, inverted age range, unknown enum value).
	ErrMalformedProfile = errors.New("malformed profile")
)

// Defaults applied when optional sub-records are absent. Onboarding is
// progressive, so a missing record is normal and never an error.
const (
	defaultAgeRangeMin       = 18
	defaultAgeRangeMax       = 30
	defaultExtroversionScore = 5
)

// Assembler collects a user's scattered attributes into one immutable
// ProfileSnapshot. A snapshot is built fresh for every scoring call; nothing
// is cached across calls.
type Assembler struct {
	profiles ProfileStore
}

func NewAssembler(profiles ProfileStore) *Assembler {
	return &Assembler{profiles: profiles}
}

func (a *Assembler) Assemble(ctx context.Context, userID int) (*ProfileSnapshot, error) {
	identity, err := a.profiles.Identity(ctx, userID)
	if err != nil {
		return nil, err
	}
	if identity.Age < 0 {
		return nil, fmt.Errorf("%w: user %d has negative age %d", ErrMalformedProfile, userID, identity.Age)
	}
	gender, err := parseGender(identity.Gender)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d: %v", ErrMalformedProfile, userID, err)
	}
	orientation, err := parseOrientation(identity.Orientation)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d: %v", ErrMalformedProfile, userID, err)
	}

	snapshot := &ProfileSnapshot{
		UserID:            identity.ID,
		Name:              identity.Name,
		Age:               identity.Age,
		Gender:            gender,
		Orientation:       orientation,
		MBTI:              strings.TrimSpace(identity.MBTI.String),
		AgeRange:          AgeRange{Min: defaultAgeRangeMin, Max: defaultAgeRangeMax},
		ExtroversionScore: defaultExtroversionScore,
	}

	prefs, err := a.profiles.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		snapshot.InterestedInGenders, err = parseGenderSet(prefs.InterestedInGenders)
		if err != nil {
			return nil, fmt.Errorf("%w: user %d: %v", ErrMalformedProfile, userID, err)
		}
		snapshot.DatingIntentions = trimmedSet(prefs.DatingIntentions)
		snapshot.PreferredAreas = trimmedSet(prefs.PreferredAreas)
		if prefs.AgeMin.Valid {
			snapshot.AgeRange.Min = int(prefs.AgeMin.Int64)
		}
		if prefs.AgeMax.Valid {
			snapshot.AgeRange.Max = int(prefs.AgeMax.Int64)
		}
		if snapshot.AgeRange.Min > snapshot.AgeRange.Max {
			return nil, fmt.Errorf("%w: user %d has inverted age range [%d,%d]",
				ErrMalformedProfile, userID, snapshot.AgeRange.Min, snapshot.AgeRange.Max)
		}
	}

	personality, err := a.profiles.Personality(ctx, userID)
	if err != nil {
		return nil, err
	}
	if personality != nil {
		snapshot.AboutMe = personality.AboutMe.String
		snapshot.Hobbies = personality.Hobbies.String
		snapshot.Lifestyle = personality.Lifestyle.String
		snapshot.Values = personality.Values.String
		snapshot.FutureGoals = personality.FutureGoals.String
		snapshot.PerfectDate = personality.PerfectDate.String
		if personality.Extroversion.Valid && personality.Extroversion.Int64 > 0 {
			snapshot.ExtroversionScore = int(personality.Extroversion.Int64)
		}
	}

	return snapshot, nil
}

func parseGender(raw string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(raw))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	}
	return "", fmt.Errorf("unknown gender %q", raw)
}

func parseOrientation(raw string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(raw))) {
	case OrientationHeterosexual:
		return OrientationHeterosexual, nil
	case OrientationHomosexual:
		return OrientationHomosexual, nil
	case OrientationBisexual:
		return OrientationBisexual, nil
	case OrientationOther:
		return OrientationOther, nil
	}
	return "", fmt.Errorf("unknown orientation %q", raw)
}

func parseGenderSet(raw []string) ([]Gender, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Gender, 0, len(raw))
	for _, v := range raw {
		g, err := parseGender(v)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func trimmedSet(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
