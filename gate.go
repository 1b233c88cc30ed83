package main

// isEligible is the boolean pre-filter deciding whether two users may be
// scored against each other at all. Rules, first match wins:
//  1. self-pairs are never eligible
//  2. either user bisexual -> eligible
//  3. both heterosexual -> eligible iff genders differ
//  4. both homosexual -> eligible iff genders are equal
//  5. everything else (mixed hetero/homo, unmodeled orientations) -> ineligible
//
// The predicate is pure and symmetric: isEligible(a,b) == isEligible(b,a).
func isEligible(a, b *ProfileSnapshot) bool {
	if a.UserID == b.UserID {
		return false
	}
	return orientationsCompatible(a, b)
}

// orientationsCompatible is the orientation/gender part of the gate, shared
// with the basic_preference scorer which awards points for it instead of
// filtering on it.
func orientationsCompatible(a, b *ProfileSnapshot) bool {
	if a.Orientation == OrientationBisexual || b.Orientation == OrientationBisexual {
		return true
	}
	if a.Orientation == OrientationHeterosexual && b.Orientation == OrientationHeterosexual {
		return a.Gender != b.Gender
	}
	if a.Orientation == OrientationHomosexual && b.Orientation == OrientationHomosexual {
		return a.Gender == b.Gender
	}
	return false
}
