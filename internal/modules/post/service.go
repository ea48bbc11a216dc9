package post

import (
	"errors"

	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/modules/gateway"
	"github.com/echoverse/core/internal/pkg/sanitize"
	"gorm.io/gorm"
)

var (
	errEmptyBody = errors.New("empty post body")
	errNotOwner  = errors.New("not the author")
	errNotFound  = errors.New("post not found")
)

type Service struct {
	db        *gorm.DB
	sanitizer *sanitize.Sanitizer
	hub       *gateway.Hub
}

func NewService(db *gorm.DB, sanitizer *sanitize.Sanitizer, hub *gateway.Hub) *Service {
	return &Service{db: db, sanitizer: sanitizer, hub: hub}
}

func (s *Service) Create(author *models.UserModel, body string) (*models.PostModel, error) {
	clean := s.sanitizer.Clean(body)
	if clean == "" {
		return nil, errEmptyBody
	}

	p := models.PostModel{AuthorID: author.ID, Body: clean}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}

	s.hub.BroadcastExcludingUser(gateway.EventPostNew, map[string]interface{}{
		"id":     p.ID,
		"author": author.Public(),
		"body":   p.Body,
	}, author.ID)
	return &p, nil
}

// Feed returns the newest posts first.
func (s *Service) Feed(page, size int) ([]models.PostModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var total int64
	if err := s.db.Model(&models.PostModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.PostModel
	err := s.db.Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).Find(&posts).Error
	return posts, total, err
}

// Delete removes a post. Authors delete their own; the admin console can
// delete anything.
func (s *Service) Delete(actor *models.UserModel, postID string) error {
	var p models.PostModel
	if err := s.db.First(&p, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound
		}
		return err
	}
	if p.AuthorID != actor.ID && !actor.CanAdmin() {
		return errNotOwner
	}
	return s.db.Delete(&p).Error
}
