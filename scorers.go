package main

import (
	"math"
	"strings"
)

// Dimension scorers. Each maps two snapshots to an int in [0,100], is pure,
// and returns the neutral 50 when either side lacks the data to compute a
// real signal.

// neutralScore is returned by a dimension with insufficient data on either side.
const neutralScore = 50

// scoreBasicPreference combines three checks: mutual gender-interest (40),
// orientation compatibility (30) and dating-intention overlap (up to 30,
// proportional to |intersection| / max set size).
func scoreBasicPreference(a, b *ProfileSnapshot) int {
	score := 0

	if genderInterestMutual(a, b) {
		score += 40
	}

	if orientationsCompatible(a, b) {
		score += 30
	}

	overlap := intentionOverlap(a.DatingIntentions, b.DatingIntentions)
	score += int(math.Round(overlap * 30))

	return score
}

func genderInterestMutual(a, b *ProfileSnapshot) bool {
	return containsGender(a.InterestedInGenders, b.Gender) &&
		containsGender(b.InterestedInGenders, a.Gender)
}

func containsGender(set []Gender, g Gender) bool {
	for _, v := range set {
		if v == g {
			return true
		}
	}
	return false
}

// intentionOverlap returns |intersection| / max(|a|,|b|) in [0,1], 0 when
// either set is empty. Intentions compare case-insensitively.
func intentionOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	common := 0
	for _, v := range a {
		if _, ok := set[strings.ToLower(strings.TrimSpace(v))]; ok {
			common++
		}
	}
	if common == 0 {
		return 0
	}
	return float64(common) / float64(max(len(a), len(b)))
}

// scoreAge: 100 if each user's age falls inside the other's stated range, 50
// if only one direction holds, else banded by absolute age difference.
func scoreAge(a, b *ProfileSnapshot) int {
	aInRange := a.Age >= b.AgeRange.Min && a.Age <= b.AgeRange.Max
	bInRange := b.Age >= a.AgeRange.Min && b.Age <= a.AgeRange.Max

	switch {
	case aInRange && bInRange:
		return 100
	case aInRange || bInRange:
		return 50
	}

	diff := a.Age - b.Age
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 5:
		return 30
	case diff <= 10:
		return 20
	default:
		return 10
	}
}

// scoreLocation: area lists are coarse, so no common area is weak-but-nonzero
// signal (20) rather than zero, and a missing list on either side is neutral.
func scoreLocation(a, b *ProfileSnapshot) int {
	if len(a.PreferredAreas) == 0 || len(b.PreferredAreas) == 0 {
		return neutralScore
	}

	set := make(map[string]struct{}, len(b.PreferredAreas))
	for _, area := range b.PreferredAreas {
		set[strings.ToLower(strings.TrimSpace(area))] = struct{}{}
	}
	common := 0
	for _, area := range a.PreferredAreas {
		if _, ok := set[strings.ToLower(strings.TrimSpace(area))]; ok {
			common++
		}
	}
	if common == 0 {
		return 20
	}
	return roundedRatio(common, max(len(a.PreferredAreas), len(b.PreferredAreas)))
}

// scoreInterests tokenizes hobbies on commas and counts fuzzy overlap: a
// hobby from A is shared when it is a substring of, or contains, any hobby
// from B (case-insensitive).
func scoreInterests(a, b *ProfileSnapshot) int {
	return scoreTraitList(a.Hobbies, b.Hobbies)
}

// scoreValues is the same algorithm applied to the values field.
func scoreValues(a, b *ProfileSnapshot) int {
	return scoreTraitList(a.Values, b.Values)
}

func scoreTraitList(rawA, rawB string) int {
	listA := splitTraitList(rawA)
	listB := splitTraitList(rawB)
	if len(listA) == 0 || len(listB) == 0 {
		return neutralScore
	}

	shared := 0
	for _, itemA := range listA {
		for _, itemB := range listB {
			if strings.Contains(itemA, itemB) || strings.Contains(itemB, itemA) {
				shared++
				break
			}
		}
	}
	return roundedRatio(shared, max(len(listA), len(listB)))
}

// splitTraitList turns a comma-delimited free-text field into trimmed,
// lowercased tokens, dropping empties.
func splitTraitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// scorePersonalityHeuristic is the non-embedding personality strategy: MBTI
// closeness, extroversion-score closeness and a lifestyle substring check,
// capped at 100. When either side carries neither an MBTI code nor a
// lifestyle description there is no personality signal to compare and the
// dimension is neutral.
func scorePersonalityHeuristic(a, b *ProfileSnapshot) int {
	if (a.MBTI == "" && a.Lifestyle == "") || (b.MBTI == "" && b.Lifestyle == "") {
		return neutralScore
	}

	score := 0

	if a.MBTI != "" && b.MBTI != "" {
		mbtiA := strings.ToUpper(a.MBTI)
		mbtiB := strings.ToUpper(b.MBTI)
		switch {
		case mbtiA == mbtiB:
			score += 40
		case len(mbtiA) >= 2 && len(mbtiB) >= 2 && mbtiA[:2] == mbtiB[:2]:
			score += 25
		case strings.Contains(mbtiA, "E") && strings.Contains(mbtiB, "I"),
			strings.Contains(mbtiA, "I") && strings.Contains(mbtiB, "E"):
			score += 20
		}
	}

	if a.ExtroversionScore > 0 && b.ExtroversionScore > 0 {
		diff := a.ExtroversionScore - b.ExtroversionScore
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff <= 2:
			score += 30
		case diff <= 4:
			score += 20
		default:
			score += 10
		}
	}

	if a.Lifestyle != "" && b.Lifestyle != "" {
		la := strings.ToLower(a.Lifestyle)
		lb := strings.ToLower(b.Lifestyle)
		if strings.Contains(la, lb) || strings.Contains(lb, la) {
			score += 30
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

func roundedRatio(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}
