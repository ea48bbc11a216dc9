package admin

import (
	"context"
	"errors"

	"github.com/echoverse/core/internal/middleware"
	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/modules/gateway"
	"github.com/echoverse/core/internal/pkg/cron"
	"github.com/echoverse/core/internal/pkg/securitylog"
	sessionpkg "github.com/echoverse/core/internal/pkg/session"
	"gorm.io/gorm"
)

var errUserNotFound = errors.New("user not found")

type Service struct {
	db       *gorm.DB
	hub      *gateway.Hub
	sessions *sessionpkg.Store
	banlist  *middleware.IPBanList
	audit    *securitylog.Logger
	sched    *cron.Scheduler
}

func NewService(db *gorm.DB, hub *gateway.Hub, sessions *sessionpkg.Store,
	banlist *middleware.IPBanList, audit *securitylog.Logger, sched *cron.Scheduler) *Service {
	return &Service{db: db, hub: hub, sessions: sessions, banlist: banlist, audit: audit, sched: sched}
}

func (s *Service) ListUsers() ([]models.UserModel, error) {
	var users []models.UserModel
	return users, s.db.Order("created_at ASC").Find(&users).Error
}

// SetBanned flips a user's ban flag. Banning also kills every live
// session, cutting access immediately instead of at next login.
func (s *Service) SetBanned(actor *models.UserModel, userID string, banned bool) error {
	action := "ADMIN_UNBAN_USER"
	if banned {
		action = "ADMIN_BAN_USER"
	}

	// Existence is checked up front: MySQL reports zero affected rows for a
	// no-op update, so RowsAffected cannot distinguish a missing user from
	// an already-banned one.
	if err := s.findUser(userID); err != nil {
		if errors.Is(err, errUserNotFound) {
			s.audit.Record(actor.ID, actor.Username, action, userID, false)
		}
		return err
	}

	if err := s.db.Model(&models.UserModel{}).
		Where("id = ?", userID).Update("banned", banned).Error; err != nil {
		return err
	}

	if banned {
		s.sessions.InvalidateUser(userID)
	}
	s.audit.Record(actor.ID, actor.Username, action, userID, true)
	return nil
}

type RolesDTO struct {
	IsVerified  *bool `json:"is_verified"`
	IsDeveloper *bool `json:"is_developer"`
	IsAdmin     *bool `json:"is_admin"`
}

func (s *Service) SetRoles(actor *models.UserModel, userID string, dto *RolesDTO) error {
	updates := map[string]interface{}{}
	if dto.IsVerified != nil {
		updates["is_verified"] = *dto.IsVerified
	}
	if dto.IsDeveloper != nil {
		updates["is_developer"] = *dto.IsDeveloper
	}
	if dto.IsAdmin != nil {
		updates["is_admin"] = *dto.IsAdmin
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.findUser(userID); err != nil {
		if errors.Is(err, errUserNotFound) {
			s.audit.Record(actor.ID, actor.Username, "ADMIN_SET_ROLES", userID, false)
		}
		return err
	}

	if err := s.db.Model(&models.UserModel{}).
		Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}
	s.audit.Record(actor.ID, actor.Username, "ADMIN_SET_ROLES", userID, true)
	return nil
}

func (s *Service) findUser(userID string) error {
	var user models.UserModel
	if err := s.db.Select("id").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUserNotFound
		}
		return err
	}
	return nil
}

func (s *Service) BanIP(actor *models.UserModel, ip, reason string) error {
	ban := models.IPBanModel{IP: ip, Reason: reason, CreatedBy: actor.ID}
	if err := s.db.Where("ip = ?", ip).
		FirstOrCreate(&ban).Error; err != nil {
		s.audit.Record(actor.ID, actor.Username, "ADMIN_BAN_IP", ip, false)
		return err
	}
	s.banlist.Add(ip)
	s.audit.Record(actor.ID, actor.Username, "ADMIN_BAN_IP", ip, true)
	return nil
}

func (s *Service) UnbanIP(actor *models.UserModel, ip string) error {
	if err := s.db.Where("ip = ?", ip).Delete(&models.IPBanModel{}).Error; err != nil {
		s.audit.Record(actor.ID, actor.Username, "ADMIN_UNBAN_IP", ip, false)
		return err
	}
	s.banlist.Remove(ip)
	s.audit.Record(actor.ID, actor.Username, "ADMIN_UNBAN_IP", ip, true)
	return nil
}

type Stats struct {
	Users      int64 `json:"users"`
	Posts      int64 `json:"posts"`
	Messages   int64 `json:"messages"`
	Tracks     int64 `json:"tracks"`
	Online     int   `json:"online"`
	PeakOnline int   `json:"peak_online"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := s.db.Model(&models.UserModel{}).Count(&stats.Users).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.PostModel{}).Count(&stats.Posts).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.MessageModel{}).Count(&stats.Messages).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.TrackModel{}).Count(&stats.Tracks).Error; err != nil {
		return nil, err
	}
	stats.Online = s.hub.ClientCount()
	stats.PeakOnline = s.hub.PeakOnline(ctx)
	return &stats, nil
}

func (s *Service) Jobs() []cron.ListItem {
	return s.sched.List()
}
