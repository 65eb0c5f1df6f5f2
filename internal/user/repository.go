package user

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(id uuid.UUID) (*User, error)
	ListByManager(managerID uuid.UUID) ([]*User, error)
	UpdateReportingLinks(id uuid.UUID, managerID, appraiserID *uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(id uuid.UUID) (*User, error) {
	var u User
	if err := r.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %s not found", id)
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

func (r *userRepository) ListByManager(managerID uuid.UUID) ([]*User, error) {
	var users []*User
	if err := r.db.
		Where("manager_id = ?", managerID).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users by manager: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpdateReportingLinks(id uuid.UUID, managerID, appraiserID *uuid.UUID) error {
	res := r.db.Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"manager_id":   managerID,
			"appraiser_id": appraiserID,
		})
	if res.Error != nil {
		return fmt.Errorf("update reporting links: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user %s not found", id)
	}
	return nil
}
