package music

import (
	"errors"

	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/pkg/sanitize"
	"gorm.io/gorm"
)

var (
	errMissingTitle = errors.New("missing title")
	errNotOwner     = errors.New("not the owner")
	errNotFound     = errors.New("track not found")
)

type Service struct {
	db        *gorm.DB
	sanitizer *sanitize.Sanitizer
}

func NewService(db *gorm.DB, sanitizer *sanitize.Sanitizer) *Service {
	return &Service{db: db, sanitizer: sanitizer}
}

func (s *Service) Create(owner *models.UserModel, dto *CreateTrackDTO) (*models.TrackModel, error) {
	title := s.sanitizer.Clean(dto.Title)
	if title == "" {
		return nil, errMissingTitle
	}
	safeName, err := ValidateUpload(dto.FileName, dto.FileSize)
	if err != nil {
		return nil, err
	}

	track := models.TrackModel{
		OwnerID:  owner.ID,
		Title:    title,
		Artist:   s.sanitizer.Clean(dto.Artist),
		FileName: safeName,
		FileSize: dto.FileSize,
	}
	return &track, s.db.Create(&track).Error
}

func (s *Service) List(limit int) ([]models.TrackModel, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	var tracks []models.TrackModel
	err := s.db.Order("created_at DESC").Limit(limit).Find(&tracks).Error
	return tracks, err
}

func (s *Service) Delete(actor *models.UserModel, trackID string) error {
	var track models.TrackModel
	if err := s.db.First(&track, "id = ?", trackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound
		}
		return err
	}
	if track.OwnerID != actor.ID && !actor.CanAdmin() {
		return errNotOwner
	}
	return s.db.Delete(&track).Error
}
