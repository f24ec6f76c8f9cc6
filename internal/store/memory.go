package store

import (
	"context"
	"sync"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
)

// Memory keeps records in a map. It backs tests and local development; the
// locking discipline is the same as the postgres store's.
type Memory struct {
	locks *userLocks

	mu    sync.RWMutex
	users map[int64]*models.User
	txs   []models.ReferralTransaction
}

func NewMemory() *Memory {
	return &Memory{
		locks: newUserLocks(),
		users: make(map[int64]*models.User),
	}
}

func (s *Memory) Get(ctx context.Context, telegramID int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[telegramID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *Memory) Upsert(ctx context.Context, telegramID int64, defaults DefaultsFunc) (*models.User, bool, error) {
	unlock := s.locks.lock(telegramID)
	defer unlock()

	s.mu.RLock()
	user, ok := s.users[telegramID]
	s.mu.RUnlock()
	if ok {
		return cloneUser(user), false, nil
	}

	fresh := defaults()
	fresh.TelegramID = telegramID

	s.mu.Lock()
	s.users[telegramID] = cloneUser(fresh)
	s.mu.Unlock()
	return fresh, true, nil
}

func (s *Memory) Update(ctx context.Context, telegramID int64, fn func(*models.User) error) (*models.User, error) {
	unlock := s.locks.lock(telegramID)
	defer unlock()

	s.mu.RLock()
	user, ok := s.users[telegramID]
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrNotFound
	}

	next := cloneUser(user)
	if err := fn(next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.users[telegramID] = cloneUser(next)
	s.mu.Unlock()
	return next, nil
}

func (s *Memory) MergeClientFields(ctx context.Context, telegramID int64, state *models.ClientState) (*models.User, error) {
	return s.Update(ctx, telegramID, func(u *models.User) error {
		applyClientState(u, state)
		return nil
	})
}

func (s *Memory) AddReferralTransaction(ctx context.Context, tx models.ReferralTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = append(s.txs, tx)
	return nil
}

// ReferralTransactions returns a copy of the recorded audit rows.
func (s *Memory) ReferralTransactions() []models.ReferralTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ReferralTransaction, len(s.txs))
	copy(out, s.txs)
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Inventory = append([]string(nil), u.Inventory...)
	c.Referrals = append([]int64(nil), u.Referrals...)
	if u.ReferredBy != nil {
		ref := *u.ReferredBy
		c.ReferredBy = &ref
	}
	return &c
}
