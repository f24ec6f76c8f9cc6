package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
)

// Postgres persists user records through gorm. Mutations for one user id are
// serialized with an in-process lock; the single writer per id makes the
// load-mutate-save sequence safe without row locks.
type Postgres struct {
	db    *gorm.DB
	locks *userLocks
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db, locks: newUserLocks()}
}

func (s *Postgres) Get(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (s *Postgres) Upsert(ctx context.Context, telegramID int64, defaults DefaultsFunc) (*models.User, bool, error) {
	unlock := s.locks.lock(telegramID)
	defer unlock()

	var user models.User
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, storeErr(err)
	}

	fresh := defaults()
	fresh.TelegramID = telegramID
	if err := s.db.WithContext(ctx).Create(fresh).Error; err != nil {
		return nil, false, storeErr(err)
	}
	return fresh, true, nil
}

func (s *Postgres) Update(ctx context.Context, telegramID int64, fn func(*models.User) error) (*models.User, error) {
	unlock := s.locks.lock(telegramID)
	defer unlock()

	var user models.User
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}

	if err := fn(&user); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (s *Postgres) MergeClientFields(ctx context.Context, telegramID int64, state *models.ClientState) (*models.User, error) {
	return s.Update(ctx, telegramID, func(u *models.User) error {
		applyClientState(u, state)
		return nil
	})
}

func (s *Postgres) AddReferralTransaction(ctx context.Context, tx models.ReferralTransaction) error {
	if err := s.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
}
