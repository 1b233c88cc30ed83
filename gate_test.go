package main

import "testing"

func TestGateSelfExclusion(t *testing.T) {
	for _, orientation := range []Orientation{
		OrientationHeterosexual, OrientationHomosexual, OrientationBisexual, OrientationOther,
	} {
		for _, gender := range []Gender{GenderMale, GenderFemale} {
			a := testSnapshot(1, gender, orientation)
			if isEligible(a, a) {
				t.Errorf("self-pair eligible for %s/%s", gender, orientation)
			}
		}
	}
}

func TestGateSymmetry(t *testing.T) {
	orientations := []Orientation{
		OrientationHeterosexual, OrientationHomosexual, OrientationBisexual, OrientationOther,
	}
	genders := []Gender{GenderMale, GenderFemale}

	for _, oa := range orientations {
		for _, ob := range orientations {
			for _, ga := range genders {
				for _, gb := range genders {
					a := testSnapshot(1, ga, oa)
					b := testSnapshot(2, gb, ob)
					if isEligible(a, b) != isEligible(b, a) {
						t.Errorf("asymmetric gate for (%s/%s) vs (%s/%s)", ga, oa, gb, ob)
					}
				}
			}
		}
	}
}

func TestGateRules(t *testing.T) {
	cases := []struct {
		name     string
		ga, gb   Gender
		oa, ob   Orientation
		eligible bool
	}{
		{"hetero opposite genders", GenderMale, GenderFemale, OrientationHeterosexual, OrientationHeterosexual, true},
		{"hetero same gender", GenderMale, GenderMale, OrientationHeterosexual, OrientationHeterosexual, false},
		{"homo same gender", GenderFemale, GenderFemale, OrientationHomosexual, OrientationHomosexual, true},
		{"homo opposite genders", GenderMale, GenderFemale, OrientationHomosexual, OrientationHomosexual, false},
		{"bisexual with hetero", GenderMale, GenderMale, OrientationBisexual, OrientationHeterosexual, true},
		{"bisexual with homo", GenderFemale, GenderMale, OrientationBisexual, OrientationHomosexual, true},
		{"both bisexual", GenderMale, GenderFemale, OrientationBisexual, OrientationBisexual, true},
		{"hetero with homo same gender", GenderMale, GenderMale, OrientationHeterosexual, OrientationHomosexual, false},
		{"hetero with homo opposite genders", GenderMale, GenderFemale, OrientationHeterosexual, OrientationHomosexual, false},
		{"both other", GenderMale, GenderFemale, OrientationOther, OrientationOther, false},
		{"other with hetero", GenderMale, GenderFemale, OrientationOther, OrientationHeterosexual, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := testSnapshot(1, tc.ga, tc.oa)
			b := testSnapshot(2, tc.gb, tc.ob)
			if got := isEligible(a, b); got != tc.eligible {
				t.Errorf("isEligible = %v, want %v", got, tc.eligible)
			}
		})
	}
}

// An orientation-incompatible candidate must never be scored, regardless of
// how compatible every other field looks.
func TestGateHeteroVsHomosexualSameGender(t *testing.T) {
	a := testSnapshot(1, GenderMale, OrientationHeterosexual)
	b := testSnapshot(2, GenderMale, OrientationHomosexual)
	a.PreferredAreas = []string{"downtown"}
	b.PreferredAreas = []string{"downtown"}
	a.Hobbies = "hiking, cooking"
	b.Hobbies = "hiking, cooking"

	if isEligible(a, b) {
		t.Fatal("expected ineligible pair")
	}
}
