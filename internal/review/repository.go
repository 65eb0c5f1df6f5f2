package review

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

// ReviewRepository stores reviews keyed by (goal_id, quarter, review_type).
// Upsert overwrites the mutable fields of an existing record for the key and
// returns the stored row.
type ReviewRepository interface {
	Upsert(r *Review) (*Review, error)
	FindByID(id uuid.UUID) (*Review, error)
	List(filter ReviewFilter) ([]Review, error)
	Delete(id uuid.UUID) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

var naturalKey = []clause.Column{{Name: "goal_id"}, {Name: "quarter"}, {Name: "review_type"}}

func (r *reviewRepository) Upsert(rev *Review) (*Review, error) {
	var stored Review

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		rev.CreatedAt = now
		rev.UpdatedAt = now

		if err := upsertByNaturalKey(tx, rev).Error; err != nil {
			if config.IsUniqueViolation(err) {
				return apperror.Conflict("a %s for %s already exists", rev.ReviewType, rev.Quarter)
			}
			return fmt.Errorf("upsert review: %w", err)
		}

		return tx.
			Where("goal_id = ? AND quarter = ? AND review_type = ?", rev.GoalID, rev.Quarter, rev.ReviewType).
			First(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// upsertByNaturalKey inserts rev or overwrites the mutable fields of the row
// already holding its natural key.
func upsertByNaturalKey(tx *gorm.DB, rev *Review) *gorm.DB {
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: naturalKey,
		DoUpdates: clause.AssignmentColumns([]string{
			"author_id", "rating", "comments", "strengths", "areas_for_improvement", "updated_at",
		}),
	}).Create(rev)
}

func (r *reviewRepository) FindByID(id uuid.UUID) (*Review, error) {
	var rev Review
	if err := r.db.First(&rev, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("review %s not found", id)
		}
		return nil, fmt.Errorf("find review %s: %w", id, err)
	}
	return &rev, nil
}

// List returns matching reviews newest first.
func (r *reviewRepository) List(filter ReviewFilter) ([]Review, error) {
	q := r.db.Model(&Review{})
	if filter.GoalID != nil {
		q = q.Where("goal_id = ?", *filter.GoalID)
	}
	if filter.ReviewType != "" {
		q = q.Where("review_type = ?", filter.ReviewType)
	}
	if filter.Quarter != "" {
		q = q.Where("quarter = ?", filter.Quarter)
	}

	var reviews []Review
	if err := q.Order("created_at DESC, id ASC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) Delete(id uuid.UUID) error {
	res := r.db.Delete(&Review{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete review %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("review %s not found", id)
	}
	return nil
}
