package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/worksite/core/internal/models"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &u, nil
}

// UpdateProfile applies the provided fields only; nil pointers leave the
// column untouched. Credentials and role are not mutable here.
func (s *Service) UpdateProfile(ctx context.Context, id string, dto *UpdateUserDTO) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
		u.Name = *dto.Name
	}
	if dto.ProfilePicture != nil {
		updates["profile_picture"] = *dto.ProfilePicture
		u.ProfilePicture = *dto.ProfilePicture
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// List returns all accounts, newest first. Admin surface only.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}
