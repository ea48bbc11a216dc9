package wallet

import (
	"errors"

	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/modules/gateway"
	"github.com/echoverse/core/internal/pkg/securitylog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errBadAmount    = errors.New("amount must be positive")
	errSelfGift     = errors.New("cannot gift yourself")
	errInsufficient = errors.New("insufficient balance")
	errUnknownPeer  = errors.New("unknown recipient")
)

type Service struct {
	db    *gorm.DB
	hub   *gateway.Hub
	audit *securitylog.Logger
}

func NewService(db *gorm.DB, hub *gateway.Hub, audit *securitylog.Logger) *Service {
	return &Service{db: db, hub: hub, audit: audit}
}

func (s *Service) Balance(userID string) (int64, error) {
	var u models.UserModel
	if err := s.db.Select("coins").First(&u, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return u.Coins, nil
}

// Gift moves E-COIN between two accounts in one transaction. Both rows are
// locked for the duration so concurrent gifts cannot overdraw, and the two
// ledger entries land atomically with the balance change.
func (s *Service) Gift(from *models.UserModel, toID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, errBadAmount
	}
	if toID == from.ID {
		return 0, errSelfGift
	}

	var remaining int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sender models.UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sender, "id = ?", from.ID).Error; err != nil {
			return err
		}
		if sender.Coins < amount {
			return errInsufficient
		}

		var receiver models.UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&receiver, "id = ? AND banned = ?", toID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUnknownPeer
			}
			return err
		}

		if err := tx.Model(&sender).
			Update("coins", gorm.Expr("coins - ?", amount)).Error; err != nil {
			return err
		}
		if err := tx.Model(&receiver).
			Update("coins", gorm.Expr("coins + ?", amount)).Error; err != nil {
			return err
		}

		ledger := []models.GiftRecord{
			{UserID: sender.ID, PeerID: receiver.ID, Amount: amount, Direction: models.GiftSent},
			{UserID: receiver.ID, PeerID: sender.ID, Amount: amount, Direction: models.GiftReceived},
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}

		remaining = sender.Coins - amount
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.audit.Record(from.ID, from.Username, "GIFT_COINS", toID, true)
	s.hub.SendToUser(toID, gateway.EventGiftReceived, map[string]interface{}{
		"from":   from.Public(),
		"amount": amount,
	})
	return remaining, nil
}

// History lists a user's ledger rows, newest first.
func (s *Service) History(userID string, limit int) ([]models.GiftRecord, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	var records []models.GiftRecord
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
