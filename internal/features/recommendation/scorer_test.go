package recommendation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func mentor(id string, subjects []string, rating float64, sessions int) MentorCandidate {
	return MentorCandidate{
		ID:              id,
		Name:            "Mentor " + id,
		Subjects:        subjects,
		HourlyRate:      40,
		Rating:          rating,
		TotalReviews:    10,
		TotalSessions:   sessions,
		ExperienceLevel: ExperienceIntermediate,
		ResponseTime:    "within an hour",
		Languages:       []string{"English"},
	}
}

func TestSubjectFilterExcludesNonMatchingMentors(t *testing.T) {
	pool := []MentorCandidate{
		mentor("m1", []string{"Math", "Physics"}, 4.9, 20),
		mentor("m2", []string{"Art"}, 5.0, 40),
	}

	recs := Rank(pool, Filters{Subjects: []string{"Math"}}, nil, 10)

	require.Len(t, recs, 1)
	assert.Equal(t, "m1", recs[0].ID)
	assert.Contains(t, recs[0].MatchReasons, "Specializes in 1 of your requested subject")
}

func TestEveryResultSatisfiesEveryFilter(t *testing.T) {
	london := "London, UK"
	remote := "Remote"
	pool := []MentorCandidate{
		{ID: "a", Subjects: []string{"Math"}, HourlyRate: 30, Rating: 4.5, ExperienceLevel: ExperienceExpert, Languages: []string{"English"}, Location: &london},
		{ID: "b", Subjects: []string{"Math"}, HourlyRate: 80, Rating: 4.8, ExperienceLevel: ExperienceExpert, Languages: []string{"English"}, Location: &london},
		{ID: "c", Subjects: []string{"Math"}, HourlyRate: 30, Rating: 3.9, ExperienceLevel: ExperienceExpert, Languages: []string{"English"}, Location: &london},
		{ID: "d", Subjects: []string{"Math"}, HourlyRate: 30, Rating: 4.5, ExperienceLevel: ExperienceBeginner, Languages: []string{"English"}, Location: &london},
		{ID: "e", Subjects: []string{"Math"}, HourlyRate: 30, Rating: 4.5, ExperienceLevel: ExperienceExpert, Languages: []string{"French"}, Location: &london},
		{ID: "f", Subjects: []string{"Math"}, HourlyRate: 30, Rating: 4.5, ExperienceLevel: ExperienceExpert, Languages: []string{"English"}, Location: &remote},
		{ID: "g", Subjects: []string{"Math"}, HourlyRate: 30, Rating: 4.5, ExperienceLevel: ExperienceExpert, Languages: []string{"English"}},
	}
	filters := Filters{
		Subjects:        []string{"Math"},
		ExperienceLevel: ptr(ExperienceExpert),
		PriceRange:      &PriceRange{Min: 20, Max: 50},
		Rating:          ptr(4.0),
		Location:        ptr("london"),
		Languages:       []string{"English"},
	}

	recs := Rank(pool, filters, nil, 10)

	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].ID)
	for _, r := range recs {
		assert.True(t, MatchesFilters(r.MentorCandidate, filters))
	}
}

func TestOutOfRangeFiltersMatchNothing(t *testing.T) {
	c := mentor("m1", []string{"Math"}, 4.0, 5)

	assert.False(t, MatchesFilters(c, Filters{Rating: ptr(7.0)}))
	assert.False(t, MatchesFilters(c, Filters{Rating: ptr(-1.0)}))
	assert.False(t, MatchesFilters(c, Filters{PriceRange: &PriceRange{Min: 60, Max: 10}}))
	assert.True(t, MatchesFilters(c, Filters{PriceRange: &PriceRange{Min: 40, Max: 40}}))
	assert.True(t, MatchesFilters(c, Filters{Location: ptr("  ")}))
}

func TestScoresAreBoundedAndRanked(t *testing.T) {
	pool := make([]MentorCandidate, 0, 30)
	for i := 0; i < 30; i++ {
		pool = append(pool, MentorCandidate{
			ID:            fmt.Sprintf("m%02d", i),
			Subjects:      []string{"Math", "Chemistry"}[:1+i%2],
			Rating:        float64(i%6) * 0.9,
			TotalSessions: i * 3,
			ResponseTime:  []string{"within minutes", "within 3 hours", "within a day", "within 2 weeks", ""}[i%5],
			Languages:     []string{"English", "Spanish"}[:1+i%2],
		})
	}
	filters := Filters{Subjects: []string{"Math", "Chemistry"}}
	profile := &StudentProfile{StudentID: "s1", Languages: []string{"Spanish"}}

	recs := Rank(pool, filters, profile, 50)

	require.Len(t, recs, 30)
	for i, r := range recs {
		assert.GreaterOrEqual(t, r.MatchScore, 0.0)
		assert.LessOrEqual(t, r.MatchScore, 100.0)
		assert.Equal(t, r.MatchScore, float64(int(r.MatchScore)))
		if i > 0 {
			assert.GreaterOrEqual(t, recs[i-1].MatchScore, r.MatchScore)
		}
	}
}

func TestLimitIsRespected(t *testing.T) {
	pool := make([]MentorCandidate, 0, 80)
	for i := 0; i < 80; i++ {
		pool = append(pool, mentor(fmt.Sprintf("m%02d", i), []string{"Math"}, 4, i))
	}

	assert.Len(t, Rank(pool, Filters{}, nil, 3), 3)
	assert.Len(t, Rank(pool, Filters{}, nil, 0), DefaultLimit)
	assert.Len(t, Rank(pool, Filters{}, nil, 500), MaxLimit)
	assert.Empty(t, Rank(nil, Filters{}, nil, 5))
}

func TestRankIsDeterministic(t *testing.T) {
	pool := []MentorCandidate{
		mentor("b", []string{"Math"}, 4.5, 10),
		mentor("a", []string{"Math"}, 4.5, 10),
		mentor("c", []string{"Math", "Physics"}, 3.0, 2),
	}
	filters := Filters{Subjects: []string{"Math"}}

	first := Rank(pool, filters, nil, 10)
	second := Rank(pool, filters, nil, 10)

	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "a", first[0].ID)
	assert.Equal(t, "b", first[1].ID)
}

func TestHigherRatingNeverLowersScore(t *testing.T) {
	low := mentor("low", []string{"Math"}, 3.0, 10)
	high := low
	high.ID = "high"
	high.Rating = 4.5

	recs := Rank([]MentorCandidate{low, high}, Filters{Subjects: []string{"Math"}}, nil, 10)

	require.Len(t, recs, 2)
	assert.Equal(t, "high", recs[0].ID)
	assert.Greater(t, recs[0].MatchScore, recs[1].MatchScore)
}

func TestProfileFillsOpenPreferences(t *testing.T) {
	pool := []MentorCandidate{
		mentor("math", []string{"Math"}, 4.0, 10),
		mentor("art", []string{"Art"}, 4.0, 10),
	}
	profile := &StudentProfile{StudentID: "s1", Interests: []string{"Art"}}

	recs := Rank(pool, Filters{}, profile, 10)

	require.Len(t, recs, 2)
	assert.Equal(t, "art", recs[0].ID)
	assert.Contains(t, recs[0].MatchReasons, "Specializes in 1 of your requested subject")
	assert.NotContains(t, recs[1].MatchReasons, "Specializes in 0 of your requested subject")
}

func TestScoreWithoutPreferencesUsesRemainingSignals(t *testing.T) {
	top := MentorCandidate{ID: "top", Rating: 5, TotalSessions: 10, ResponseTime: "within minutes"}

	recs := Rank([]MentorCandidate{top}, Filters{}, nil, 1)

	require.Len(t, recs, 1)
	assert.Equal(t, 100.0, recs[0].MatchScore)
	assert.Len(t, recs[0].MatchReasons, 3)
}

func TestResponseTimeScore(t *testing.T) {
	cases := map[string]float64{
		"within minutes":                    1.0,
		"Within an hour":                    1.0,
		"within 3 hours":                    0.75,
		"within a few hours":                0.75,
		"within 12 hours":                   0.5,
		"within a day":                      0.5,
		"within 3 days":                     0.25,
		"within a week":                     0.1,
		"whenever":                          0,
		"within 99999999999999999999 hours": 0,
		"within 99999999999999999999 days":  0,
		"":                                  0,
	}
	for label, want := range cases {
		assert.Equalf(t, want, ResponseTimeScore(label), "label %q", label)
	}
}

func TestPopularSubjects(t *testing.T) {
	pool := []MentorCandidate{
		{ID: "1", Subjects: []string{"Math", "Physics", "Art"}},
		{ID: "2", Subjects: []string{"Math", "Physics"}},
		{ID: "3", Subjects: []string{"Math", "Physics", "Math"}},
		{ID: "4", Subjects: []string{"Math"}},
		{ID: "5", Subjects: []string{"Math"}},
	}

	got := PopularSubjects(pool, 2)

	assert.Equal(t, []SubjectCount{{Subject: "Math", Count: 5}, {Subject: "Physics", Count: 3}}, got)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-4))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, MaxLimit, NormalizeLimit(51))
}
