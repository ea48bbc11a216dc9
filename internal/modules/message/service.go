package message

import (
	"errors"

	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/modules/gateway"
	"github.com/echoverse/core/internal/pkg/cryptoutil"
	"github.com/echoverse/core/internal/pkg/sanitize"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errEmptyBody   = errors.New("empty message body")
	errUnknownPeer = errors.New("unknown recipient")
	errSelfMessage = errors.New("cannot message yourself")
)

type Service struct {
	db        *gorm.DB
	sanitizer *sanitize.Sanitizer
	hub       *gateway.Hub
	key       []byte
	logger    *zap.Logger
}

// NewService wires the messaging layer. key enables at-rest encryption;
// nil stores plaintext.
func NewService(db *gorm.DB, sanitizer *sanitize.Sanitizer, hub *gateway.Hub,
	key []byte, logger *zap.Logger) *Service {
	return &Service{db: db, sanitizer: sanitizer, hub: hub, key: key, logger: logger}
}

type MessageView struct {
	ID      string `json:"id"`
	FromID  string `json:"from_id"`
	ToID    string `json:"to_id"`
	Body    string `json:"body"`
	Created string `json:"created"`
}

func (s *Service) Send(from *models.UserModel, toID, body string) (*MessageView, error) {
	clean := s.sanitizer.Clean(body)
	if clean == "" {
		return nil, errEmptyBody
	}
	if toID == from.ID {
		return nil, errSelfMessage
	}

	var count int64
	if err := s.db.Model(&models.UserModel{}).
		Where("id = ? AND banned = ?", toID, false).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errUnknownPeer
	}

	stored := clean
	encrypted := false
	if s.key != nil {
		sealed, err := cryptoutil.Encrypt(clean, s.key)
		if err != nil {
			return nil, err
		}
		stored = sealed
		encrypted = true
	}

	m := models.MessageModel{
		FromID:    from.ID,
		ToID:      toID,
		Body:      stored,
		Encrypted: encrypted,
	}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}

	view := &MessageView{
		ID:      m.ID,
		FromID:  m.FromID,
		ToID:    m.ToID,
		Body:    clean,
		Created: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	s.hub.SendToUser(toID, gateway.EventMessageNew, view)
	return view, nil
}

// Conversation lists both directions between user and peer, oldest first,
// decrypting bodies on the way out.
func (s *Service) Conversation(userID, peerID string, limit int) ([]MessageView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.MessageModel
	if err := s.db.
		Where("(from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		m := rows[i]
		body := m.Body
		if m.Encrypted {
			if s.key == nil {
				s.logger.Warn("encrypted message with no key configured", zap.String("id", m.ID))
				continue
			}
			plain, err := cryptoutil.Decrypt(m.Body, s.key)
			if err != nil {
				s.logger.Error("message decrypt failed", zap.String("id", m.ID), zap.Error(err))
				continue
			}
			body = plain
		}
		views = append(views, MessageView{
			ID:      m.ID,
			FromID:  m.FromID,
			ToID:    m.ToID,
			Body:    body,
			Created: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return views, nil
}
