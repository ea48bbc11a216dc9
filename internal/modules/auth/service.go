package auth

import (
	"errors"
	"regexp"
	"time"

	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/pkg/cryptoutil"
	"github.com/echoverse/core/internal/pkg/sanitize"
	"github.com/echoverse/core/internal/pkg/securitylog"
	sessionpkg "github.com/echoverse/core/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errBadCredentials = errors.New("bad credentials")
	errUsernameTaken  = errors.New("username taken")
	errInvalidInput   = errors.New("invalid input")

	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

type Service struct {
	db        *gorm.DB
	sessions  *sessionpkg.Store
	sanitizer *sanitize.Sanitizer
	audit     *securitylog.Logger
	logger    *zap.Logger
}

func NewService(db *gorm.DB, sessions *sessionpkg.Store, sanitizer *sanitize.Sanitizer,
	audit *securitylog.Logger, logger *zap.Logger) *Service {
	return &Service{db: db, sessions: sessions, sanitizer: sanitizer, audit: audit, logger: logger}
}

func (s *Service) Register(dto *RegisterDTO, ip string) (string, *models.UserModel, error) {
	if !usernameRe.MatchString(dto.Username) || len(dto.Password) < 8 {
		return "", nil, errInvalidInput
	}

	var count int64
	if err := s.db.Model(&models.UserModel{}).
		Where("username = ?", dto.Username).Count(&count).Error; err != nil {
		return "", nil, err
	}
	if count > 0 {
		return "", nil, errUsernameTaken
	}

	display := s.sanitizer.Clean(dto.DisplayName)
	if display == "" {
		display = dto.Username
	}

	now := time.Now()
	u := models.UserModel{
		Username:    dto.Username,
		DisplayName: display,
		Password:    cryptoutil.HashPassword(dto.Password),
		Coins:       models.StartingCoins,
		LastLoginAt: &now,
		LastLoginIP: ip,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return "", nil, err
	}

	token := s.sessions.Create(u.ID)
	s.audit.Record(u.ID, u.Username, "REGISTER", u.Username, true)
	return token, &u, nil
}

// Login verifies credentials against either hash format. A match against
// the legacy unsalted digest transparently rewrites the stored hash in the
// current format before the session is issued.
func (s *Service) Login(dto *LoginDTO, ip string) (string, *models.UserModel, error) {
	var u models.UserModel
	if err := s.db.Where("username = ?", dto.Username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit.Record("", "", "LOGIN", dto.Username, false)
			return "", nil, errBadCredentials
		}
		return "", nil, err
	}

	ok, needsUpgrade := cryptoutil.VerifyPassword(dto.Password, u.Password)
	if !ok || u.Banned {
		s.audit.Record(u.ID, u.Username, "LOGIN", dto.Username, false)
		return "", nil, errBadCredentials
	}

	now := time.Now()
	updates := map[string]interface{}{
		"last_login_at": &now,
		"last_login_ip": ip,
	}
	if needsUpgrade {
		upgraded := cryptoutil.HashPassword(dto.Password)
		updates["password"] = upgraded
		u.Password = upgraded
		s.logger.Info("upgraded legacy password hash", zap.String("user", u.ID))
	}
	if err := s.db.Model(&u).Updates(updates).Error; err != nil {
		return "", nil, err
	}
	u.LastLoginAt = &now
	u.LastLoginIP = ip

	token := s.sessions.Create(u.ID)
	s.audit.Record(u.ID, u.Username, "LOGIN", u.Username, true)
	return token, &u, nil
}

func (s *Service) Logout(token string, user *models.UserModel) {
	s.sessions.Invalidate(token)
	s.audit.Record(user.ID, user.Username, "LOGOUT", user.Username, true)
}

// FindUser is the lookup the auth middleware runs on every request.
func (s *Service) FindUser(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
