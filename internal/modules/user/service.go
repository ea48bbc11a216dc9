package user

import (
	"errors"

	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/pkg/sanitize"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	sanitizer *sanitize.Sanitizer
}

func NewService(db *gorm.DB, sanitizer *sanitize.Sanitizer) *Service {
	return &Service{db: db, sanitizer: sanitizer}
}

func (s *Service) List() ([]models.PublicProfile, error) {
	var users []models.UserModel
	if err := s.db.Where("banned = ?", false).
		Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	return profiles, nil
}

func (s *Service) Get(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) UpdateProfile(u *models.UserModel, dto *UpdateProfileDTO) error {
	updates := map[string]interface{}{}
	if dto.DisplayName != nil {
		updates["display_name"] = s.sanitizer.Clean(*dto.DisplayName)
	}
	if dto.Bio != nil {
		updates["bio"] = s.sanitizer.Clean(*dto.Bio)
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(u).Updates(updates).Error
}
