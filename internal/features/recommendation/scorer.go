package recommendation

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Signal weights. They sum to 1.0 and are listed from highest to lowest impact.
const (
	WeightSubjects     = 0.40
	WeightRating       = 0.25
	WeightPopularity   = 0.15
	WeightResponseTime = 0.10
	WeightLanguages    = 0.10
)

const (
	// ReasonThreshold is the minimum normalised signal value that earns a match reason.
	ReasonThreshold = 0.3

	DefaultLimit = 10
	MaxLimit     = 50
	MaxRating    = 5.0
)

type signal int

const (
	signalSubjects signal = iota
	signalRating
	signalPopularity
	signalResponseTime
	signalLanguages
	signalCount
)

var signalWeights = [signalCount]float64{
	signalSubjects:     WeightSubjects,
	signalRating:       WeightRating,
	signalPopularity:   WeightPopularity,
	signalResponseTime: WeightResponseTime,
	signalLanguages:    WeightLanguages,
}

// preferences are the soft targets a candidate is compared against.
type preferences struct {
	subjects  []string
	languages []string
}

func (p preferences) active(s signal) bool {
	switch s {
	case signalSubjects:
		return len(p.subjects) > 0
	case signalLanguages:
		return len(p.languages) > 0
	default:
		return true
	}
}

// resolvePreferences prefers what the caller asked for and falls back to the student's profile.
func resolvePreferences(filters Filters, profile *StudentProfile) preferences {
	var p preferences
	p.subjects = uniqueTrimmed(filters.Subjects)
	p.languages = uniqueTrimmed(filters.Languages)

	if profile != nil {
		if len(p.subjects) == 0 {
			p.subjects = uniqueTrimmed(append(slices.Clone(profile.Interests), profile.BookedSubjects...))
		}
		if len(p.languages) == 0 {
			p.languages = uniqueTrimmed(profile.Languages)
		}
	}
	return p
}

// MatchesFilters applies the hard filters in a fixed order and stops at the first miss.
// Out-of-range filter values match nothing.
func MatchesFilters(c MentorCandidate, f Filters) bool {
	if len(f.Subjects) > 0 && countShared(c.Subjects, f.Subjects) == 0 {
		return false
	}

	if f.ExperienceLevel != nil && c.ExperienceLevel != *f.ExperienceLevel {
		return false
	}

	if pr := f.PriceRange; pr != nil {
		if pr.Min < 0 || pr.Max < 0 || pr.Min > pr.Max {
			return false
		}
		if c.HourlyRate < pr.Min || c.HourlyRate > pr.Max {
			return false
		}
	}

	if f.Rating != nil {
		minRating := *f.Rating
		if math.IsNaN(minRating) || minRating < 0 || minRating > MaxRating {
			return false
		}
		if c.Rating < minRating {
			return false
		}
	}

	if f.Location != nil {
		if needle := strings.ToLower(strings.TrimSpace(*f.Location)); needle != "" {
			if c.Location == nil || !strings.Contains(strings.ToLower(*c.Location), needle) {
				return false
			}
		}
	}

	if len(f.Languages) > 0 && countShared(c.Languages, f.Languages) == 0 {
		return false
	}

	return true
}

type scored struct {
	candidate MentorCandidate
	values    [signalCount]float64
	score     float64
}

// Rank filters, scores, explains and orders the pool, returning at most limit entries.
func Rank(pool []MentorCandidate, filters Filters, profile *StudentProfile, limit int) []MentorRecommendation {
	limit = NormalizeLimit(limit)
	prefs := resolvePreferences(filters, profile)

	survivors := make([]MentorCandidate, 0, len(pool))
	for _, c := range pool {
		if MatchesFilters(c, filters) {
			survivors = append(survivors, c)
		}
	}

	maxSessions := 0
	for _, c := range survivors {
		maxSessions = max(maxSessions, c.TotalSessions)
	}

	results := make([]scored, 0, len(survivors))
	for _, c := range survivors {
		values := signalValues(c, prefs, maxSessions)
		results = append(results, scored{
			candidate: c,
			values:    values,
			score:     combine(values, prefs),
		})
	}

	slices.SortFunc(results, compareScored)

	if len(results) > limit {
		results = results[:limit]
	}

	out := make([]MentorRecommendation, 0, len(results))
	for _, r := range results {
		out = append(out, MentorRecommendation{
			MentorCandidate: r.candidate,
			MatchScore:      r.score,
			MatchReasons:    reasons(r, prefs),
		})
	}
	return out
}

func compareScored(a, b scored) int {
	if c := cmp.Compare(b.score, a.score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.candidate.Rating, a.candidate.Rating); c != 0 {
		return c
	}
	if c := cmp.Compare(b.candidate.TotalSessions, a.candidate.TotalSessions); c != 0 {
		return c
	}
	return cmp.Compare(a.candidate.ID, b.candidate.ID)
}

// NormalizeLimit applies the default and the hard cap.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

func signalValues(c MentorCandidate, prefs preferences, maxSessions int) [signalCount]float64 {
	var v [signalCount]float64

	if len(prefs.subjects) > 0 {
		v[signalSubjects] = float64(countShared(c.Subjects, prefs.subjects)) / float64(len(prefs.subjects))
	}

	v[signalRating] = clamp01(c.Rating / MaxRating)

	if maxSessions > 0 {
		v[signalPopularity] = clamp01(math.Log1p(float64(max(c.TotalSessions, 0))) / math.Log1p(float64(maxSessions)))
	}

	v[signalResponseTime] = ResponseTimeScore(c.ResponseTime)

	if len(prefs.languages) > 0 {
		v[signalLanguages] = float64(countShared(c.Languages, prefs.languages)) / float64(len(prefs.languages))
	}

	return v
}

// combine renormalises over the signals that are active for this call, so a call
// without subject or language preferences still spans 0-100.
func combine(values [signalCount]float64, prefs preferences) float64 {
	var sum, weight float64
	for s := signal(0); s < signalCount; s++ {
		if !prefs.active(s) {
			continue
		}
		sum += signalWeights[s] * values[s]
		weight += signalWeights[s]
	}
	if weight == 0 {
		return 0
	}
	return math.Max(0, math.Min(100, math.Round(sum/weight*100)))
}

func reasons(r scored, prefs preferences) []string {
	out := make([]string, 0, signalCount)
	c := r.candidate
	for s := signal(0); s < signalCount; s++ {
		if !prefs.active(s) || r.values[s] < ReasonThreshold {
			continue
		}
		switch s {
		case signalSubjects:
			n := countShared(c.Subjects, prefs.subjects)
			out = append(out, fmt.Sprintf("Specializes in %d of your requested %s", n, plural(len(prefs.subjects), "subject", "subjects")))
		case signalRating:
			if c.TotalReviews > 0 {
				out = append(out, fmt.Sprintf("Rated %.1f/5 across %d %s", c.Rating, c.TotalReviews, plural(c.TotalReviews, "review", "reviews")))
			} else {
				out = append(out, fmt.Sprintf("Rated %.1f/5", c.Rating))
			}
		case signalPopularity:
			out = append(out, fmt.Sprintf("Experienced mentor with %d completed %s", c.TotalSessions, plural(c.TotalSessions, "session", "sessions")))
		case signalResponseTime:
			out = append(out, fmt.Sprintf("Typically responds %s", strings.ToLower(strings.TrimSpace(c.ResponseTime))))
		case signalLanguages:
			n := countShared(c.Languages, prefs.languages)
			out = append(out, fmt.Sprintf("Speaks %d of your preferred %s", n, plural(len(prefs.languages), "language", "languages")))
		}
	}
	return out
}

var firstNumber = regexp.MustCompile(`\d+`)

// ResponseTimeScore buckets a free-form response time label such as "within an hour"
// or "within 2 days". Faster buckets score higher; unrecognised labels score 0.
func ResponseTimeScore(label string) float64 {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return 0
	}

	n := 1
	if m := firstNumber.FindString(l); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil {
			return 0
		}
		n = parsed
	} else if strings.Contains(l, "few") {
		n = 3
	}

	switch {
	case strings.Contains(l, "minute"):
		return 1.0
	case strings.Contains(l, "hour"):
		switch {
		case n <= 1:
			return 1.0
		case n <= 6:
			return 0.75
		default:
			return 0.5
		}
	case strings.Contains(l, "day"):
		if n <= 1 {
			return 0.5
		}
		return 0.25
	case strings.Contains(l, "week"):
		return 0.1
	}
	return 0
}

// PopularSubjects counts each subject once per mentor and orders by count, then name.
func PopularSubjects(pool []MentorCandidate, limit int) []SubjectCount {
	limit = NormalizeLimit(limit)

	counts := make(map[string]int)
	for _, c := range pool {
		for _, s := range uniqueTrimmed(c.Subjects) {
			counts[s]++
		}
	}

	out := make([]SubjectCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, SubjectCount{Subject: s, Count: n})
	}
	slices.SortFunc(out, func(a, b SubjectCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Subject, b.Subject)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func countShared(have, want []string) int {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[strings.TrimSpace(h)] = struct{}{}
	}
	n := 0
	for _, w := range uniqueTrimmed(want) {
		if _, ok := set[w]; ok {
			n++
		}
	}
	return n
}

func uniqueTrimmed(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
