// Package reviewtest provides an in-memory review.ReviewRepository.
package reviewtest

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"github.com/saulo-duarte/appraisal-lambda/internal/review"
)

type key struct {
	goalID     uuid.UUID
	quarter    string
	reviewType review.ReviewType
}

type Repository struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]review.Review
	byKey   map[key]uuid.UUID

	// Now is the clock used for created_at/updated_at.
	Now func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		reviews: map[uuid.UUID]review.Review{},
		byKey:   map[key]uuid.UUID{},
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) Upsert(rev *review.Review) (*review.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Now()
	k := key{rev.GoalID, rev.Quarter, rev.ReviewType}

	if id, ok := r.byKey[k]; ok {
		stored := r.reviews[id]
		stored.AuthorID = rev.AuthorID
		stored.Rating = rev.Rating
		stored.Comments = rev.Comments
		stored.Strengths = rev.Strengths
		stored.AreasForImprovement = rev.AreasForImprovement
		stored.UpdatedAt = now
		r.reviews[id] = stored
		return &stored, nil
	}

	stored := *rev
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.reviews[stored.ID] = stored
	r.byKey[k] = stored.ID
	return &stored, nil
}

func (r *Repository) FindByID(id uuid.UUID) (*review.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review %s not found", id)
	}
	return &rev, nil
}

func (r *Repository) List(filter review.ReviewFilter) ([]review.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []review.Review{}
	for _, rev := range r.reviews {
		if filter.GoalID != nil && rev.GoalID != *filter.GoalID {
			continue
		}
		if filter.ReviewType != "" && rev.ReviewType != filter.ReviewType {
			continue
		}
		if filter.Quarter != "" && rev.Quarter != filter.Quarter {
			continue
		}
		out = append(out, rev)
	}
	slices.SortFunc(out, func(a, b review.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}

func (r *Repository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return apperror.NotFound("review %s not found", id)
	}
	delete(r.reviews, id)
	delete(r.byKey, key{rev.GoalID, rev.Quarter, rev.ReviewType})
	return nil
}

// Count reports how many reviews are stored.
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reviews)
}
