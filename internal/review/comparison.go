package review

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
)

// Compare groups the goal's reviews by period and pairs self-assessment with
// manager review. When quarter is non-empty only that period is returned.
// Periods come back oldest first; a period with no reviews is not listed.
func Compare(g *goal.Goal, reviews []Review, quarter string) []Comparison {
	byQuarter := map[string]*Comparison{}

	for i := range reviews {
		rev := &reviews[i]
		if rev.GoalID != g.ID {
			continue
		}
		if quarter != "" && rev.Quarter != quarter {
			continue
		}

		c, ok := byQuarter[rev.Quarter]
		if !ok {
			c = &Comparison{
				GoalID:      g.ID,
				GoalTitle:   g.Title,
				GoalQuarter: g.Quarter,
				Quarter:     rev.Quarter,
			}
			byQuarter[rev.Quarter] = c
		}

		resp := toResponse(rev)
		switch rev.ReviewType {
		case TypeSelfAssessment:
			c.SelfAssessment = &resp
		case TypeManagerReview:
			c.ManagerReview = &resp
		}
	}

	out := make([]Comparison, 0, len(byQuarter))
	for _, c := range byQuarter {
		if c.SelfAssessment == nil {
			c.SelfAssessmentLabel = NotSubmitted
		}
		if c.ManagerReview == nil {
			c.ManagerReviewLabel = NotSubmitted
		}
		c.RatingDifference = RatingDifference(c.SelfAssessment, c.ManagerReview)
		out = append(out, *c)
	}

	slices.SortFunc(out, func(a, b Comparison) int {
		return comparePeriods(a.Quarter, b.Quarter)
	})
	return out
}

// RatingDifference is manager minus self, or nil unless both exist.
func RatingDifference(self, manager *ReviewResponse) *int {
	if self == nil || manager == nil {
		return nil
	}
	d := manager.Rating - self.Rating
	return &d
}

// comparePeriods orders "Q<n> <year>" labels by year, then quarter.
func comparePeriods(a, b string) int {
	ay, aq, aok := parsePeriod(a)
	by, bq, bok := parsePeriod(b)
	if !aok || !bok {
		return strings.Compare(a, b)
	}
	if c := cmp.Compare(ay, by); c != 0 {
		return c
	}
	return cmp.Compare(aq, bq)
}

func parsePeriod(label string) (year, quarter int, ok bool) {
	q, y, found := strings.Cut(label, " ")
	if !found || len(q) != 2 || q[0] != 'Q' {
		return 0, 0, false
	}
	quarter, err := strconv.Atoi(q[1:])
	if err != nil {
		return 0, 0, false
	}
	year, err = strconv.Atoi(y)
	if err != nil {
		return 0, 0, false
	}
	return year, quarter, true
}
