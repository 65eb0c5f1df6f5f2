// Package goaltest provides an in-memory goal.GoalRepository for service tests.
package goaltest

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
	util "github.com/saulo-duarte/appraisal-lambda/internal/utils"
)

// Repository mirrors the gorm repository's contract: version-checked updates
// and deletes, and progress appends serialized per goal.
type Repository struct {
	mu       sync.Mutex
	goals    map[uuid.UUID]goal.Goal
	progress map[uuid.UUID][]goal.ProgressEntry

	// Now overrides the clock used for stored timestamps when set.
	Now func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		goals:    map[uuid.UUID]goal.Goal{},
		progress: map[uuid.UUID][]goal.ProgressEntry{},
	}
}

func (r *Repository) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Put stores g as-is, replacing any goal with the same id.
func (r *Repository) Put(g *goal.Goal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals[g.ID] = *g
}

func (r *Repository) Create(g *goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.goals[g.ID]; ok {
		return apperror.Conflict("goal %s already exists", g.ID)
	}
	r.goals[g.ID] = *g
	return nil
}

func (r *Repository) FindByID(id uuid.UUID) (*goal.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok {
		return nil, apperror.NotFound("goal %s not found", id)
	}
	return &g, nil
}

func (r *Repository) ListByOwner(ownerID uuid.UUID) ([]*goal.Goal, error) {
	return r.filter(func(g goal.Goal) bool { return g.OwnerID == ownerID }), nil
}

func (r *Repository) ListByOwnerAndStatus(ownerID uuid.UUID, status goal.Status) ([]*goal.Goal, error) {
	return r.filter(func(g goal.Goal) bool { return g.OwnerID == ownerID && g.Status == status }), nil
}

func (r *Repository) ListByOwners(ownerIDs []uuid.UUID) ([]*goal.Goal, error) {
	return r.filter(func(g goal.Goal) bool { return slices.Contains(ownerIDs, g.OwnerID) }), nil
}

func (r *Repository) ListByStatus(status goal.Status) ([]*goal.Goal, error) {
	return r.filter(func(g goal.Goal) bool { return g.Status == status }), nil
}

func (r *Repository) ListAll() ([]*goal.Goal, error) {
	return r.filter(func(goal.Goal) bool { return true }), nil
}

func (r *Repository) filter(keep func(goal.Goal) bool) []*goal.Goal {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*goal.Goal{}
	for _, g := range r.goals {
		if keep(g) {
			out = append(out, &g)
		}
	}
	slices.SortFunc(out, func(a, b *goal.Goal) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out
}

func (r *Repository) Update(g *goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.goals[g.ID]
	if !ok {
		return apperror.NotFound("goal %s not found", g.ID)
	}
	if stored.Version != g.Version {
		return apperror.Conflict("goal %s was modified concurrently, reload and retry", g.ID)
	}
	g.Version++
	g.UpdatedAt = r.now()
	r.goals[g.ID] = *g
	return nil
}

func (r *Repository) Delete(g *goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.goals[g.ID]
	if !ok {
		return apperror.NotFound("goal %s not found", g.ID)
	}
	if stored.Version != g.Version || stored.Status != goal.StatusDraft {
		return apperror.Conflict("goal %s was modified concurrently, reload and retry", g.ID)
	}
	delete(r.goals, g.ID)
	delete(r.progress, g.ID)
	return nil
}

func (r *Repository) AppendProgress(goalID uuid.UUID, entry *goal.ProgressEntry, guard func(*goal.Goal) error) (*goal.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.goals[goalID]
	if !ok {
		return nil, apperror.NotFound("goal %s not found", goalID)
	}
	if err := guard(&g); err != nil {
		return nil, err
	}

	var last *time.Time
	if entries := r.progress[goalID]; len(entries) > 0 {
		last = &entries[len(entries)-1].CreatedAt
	}
	entry.GoalID = goalID
	entry.CreatedAt = goal.NextEntryTime(last, entry.CreatedAt)
	r.progress[goalID] = append(r.progress[goalID], *entry)

	at := entry.CreatedAt
	g.Progress = entry.Progress
	g.ProgressUpdatedAt = &at
	g.Version++
	g.UpdatedAt = r.now()
	r.goals[goalID] = g

	return &g, nil
}

func (r *Repository) ListProgress(goalID uuid.UUID) ([]goal.ProgressEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.progress[goalID]), nil
}

// NewGoal builds a draft goal owned by ownerID with valid fields, created at
// the given offset from a fixed base so tests get a deterministic order.
func NewGoal(ownerID uuid.UUID, title string, offset time.Duration) *goal.Goal {
	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	return &goal.Goal{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: title + " description",
		Target:      "ship it",
		Quarter:     goal.Q1,
		StartDate:   util.NewDate(2025, time.January, 1),
		EndDate:     util.NewDate(2025, time.March, 31),
		Status:      goal.StatusDraft,
		Version:     1,
		CreatedAt:   base.Add(offset),
		UpdatedAt:   base.Add(offset),
	}
}
