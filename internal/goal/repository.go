package goal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalRepository persists goals and their progress ledgers.
//
// Update and Delete are optimistic: they apply only when the stored version
// equals goal.Version and fail with apperror.ErrConflict otherwise.
// AppendProgress serializes appends per goal with a row lock and runs guard
// against the locked row before writing.
type GoalRepository interface {
	Create(g *Goal) error
	FindByID(id uuid.UUID) (*Goal, error)
	ListByOwner(ownerID uuid.UUID) ([]*Goal, error)
	ListByOwnerAndStatus(ownerID uuid.UUID, status Status) ([]*Goal, error)
	ListByOwners(ownerIDs []uuid.UUID) ([]*Goal, error)
	ListByStatus(status Status) ([]*Goal, error)
	ListAll() ([]*Goal, error)
	Update(g *Goal) error
	Delete(g *Goal) error

	AppendProgress(goalID uuid.UUID, entry *ProgressEntry, guard func(*Goal) error) (*Goal, error)
	ListProgress(goalID uuid.UUID) ([]ProgressEntry, error)
}

type goalRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

var updatableColumns = []string{
	"title", "description", "target", "quarter", "start_date", "end_date",
	"comments", "reviewer_id", "assigned_reviewer_id", "status", "progress", "progress_updated_at",
	"version", "updated_at",
}

func (r *goalRepository) Create(g *Goal) error {
	if err := r.db.Omit(clause.Associations).Create(g).Error; err != nil {
		if config.IsUniqueViolation(err) {
			return apperror.Conflict("goal %s already exists", g.ID)
		}
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (r *goalRepository) FindByID(id uuid.UUID) (*Goal, error) {
	var g Goal
	if err := r.db.First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("goal %s not found", id)
		}
		return nil, fmt.Errorf("find goal %s: %w", id, err)
	}
	return &g, nil
}

func (r *goalRepository) ListByOwner(ownerID uuid.UUID) ([]*Goal, error) {
	return r.list(r.db.Where("owner_id = ?", ownerID))
}

func (r *goalRepository) ListByOwnerAndStatus(ownerID uuid.UUID, status Status) ([]*Goal, error) {
	return r.list(r.db.Where("owner_id = ? AND status = ?", ownerID, status))
}

func (r *goalRepository) ListByOwners(ownerIDs []uuid.UUID) ([]*Goal, error) {
	if len(ownerIDs) == 0 {
		return []*Goal{}, nil
	}
	return r.list(r.db.Where("owner_id IN ?", ownerIDs))
}

func (r *goalRepository) ListByStatus(status Status) ([]*Goal, error) {
	return r.list(r.db.Where("status = ?", status))
}

func (r *goalRepository) ListAll() ([]*Goal, error) {
	return r.list(r.db)
}

func (r *goalRepository) list(q *gorm.DB) ([]*Goal, error) {
	var goals []*Goal
	if err := q.Order("created_at ASC, id ASC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (r *goalRepository) Update(g *Goal) error {
	expected := g.Version
	g.Version = expected + 1
	g.UpdatedAt = time.Now().UTC()

	res := versionedUpdate(r.db, g, expected)
	if res.Error != nil {
		g.Version = expected
		return fmt.Errorf("update goal %s: %w", g.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		g.Version = expected
		return r.missingOrConflict(g.ID)
	}
	return nil
}

func (r *goalRepository) Delete(g *Goal) error {
	res := versionedDelete(r.db, g)
	if res.Error != nil {
		return fmt.Errorf("delete goal %s: %w", g.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingOrConflict(g.ID)
	}
	return nil
}

// versionedUpdate writes g only if the stored row still has version expected.
func versionedUpdate(db *gorm.DB, g *Goal, expected int) *gorm.DB {
	return db.Model(g).
		Omit(clause.Associations).
		Where("version = ?", expected).
		Select(updatableColumns).
		Updates(g)
}

func versionedDelete(db *gorm.DB, g *Goal) *gorm.DB {
	return db.
		Where("id = ? AND version = ? AND status = ?", g.ID, g.Version, StatusDraft).
		Delete(&Goal{})
}

// lockGoal reads the goal row with SELECT ... FOR UPDATE.
func lockGoal(tx *gorm.DB, dest *Goal, id uuid.UUID) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dest, "id = ?", id)
}

func (r *goalRepository) missingOrConflict(id uuid.UUID) error {
	var count int64
	if err := r.db.Model(&Goal{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check goal %s: %w", id, err)
	}
	if count == 0 {
		return apperror.NotFound("goal %s not found", id)
	}
	return apperror.Conflict("goal %s was modified concurrently, reload and retry", id)
}

func (r *goalRepository) AppendProgress(goalID uuid.UUID, entry *ProgressEntry, guard func(*Goal) error) (*Goal, error) {
	var updated Goal

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var g Goal
		if err := lockGoal(tx, &g, goalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("goal %s not found", goalID)
			}
			return fmt.Errorf("lock goal %s: %w", goalID, err)
		}

		if err := guard(&g); err != nil {
			return err
		}

		var last []ProgressEntry
		if err := tx.Where("goal_id = ?", goalID).Order("created_at DESC").Limit(1).Find(&last).Error; err != nil {
			return fmt.Errorf("read latest progress: %w", err)
		}
		var lastAt *time.Time
		if len(last) > 0 {
			lastAt = &last[0].CreatedAt
		}

		entry.GoalID = goalID
		entry.CreatedAt = NextEntryTime(lastAt, entry.CreatedAt)
		if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
			return fmt.Errorf("append progress: %w", err)
		}

		at := entry.CreatedAt
		g.Progress = entry.Progress
		g.ProgressUpdatedAt = &at
		g.Version++
		g.UpdatedAt = time.Now().UTC()

		if err := tx.Model(&g).
			Omit(clause.Associations).
			Select("progress", "progress_updated_at", "version", "updated_at").
			Updates(&g).Error; err != nil {
			return fmt.Errorf("cache progress on goal: %w", err)
		}

		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *goalRepository) ListProgress(goalID uuid.UUID) ([]ProgressEntry, error) {
	var entries []ProgressEntry
	if err := r.db.
		Where("goal_id = ?", goalID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return entries, nil
}
