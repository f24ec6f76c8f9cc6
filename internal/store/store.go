// Package store holds per-user game records behind an interface with per-id
// atomic read-modify-write. Implementations serialize every mutation of a
// given Telegram user id; operations on different ids may run concurrently.
package store

import (
	"context"
	"sync"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
)

// DefaultsFunc builds the record inserted when Upsert finds no existing one.
type DefaultsFunc func() *models.User

type Store interface {
	// Get returns the record for telegramID or models.ErrNotFound.
	Get(ctx context.Context, telegramID int64) (*models.User, error)

	// Upsert returns the existing record, or inserts defaults() and
	// returns it. The second result is true when the record was created.
	Upsert(ctx context.Context, telegramID int64, defaults DefaultsFunc) (*models.User, bool, error)

	// Update applies fn to the record under the per-id lock and persists
	// the result. fn returning an error aborts the write and the error is
	// passed through. Returns models.ErrNotFound for unknown ids.
	Update(ctx context.Context, telegramID int64, fn func(*models.User) error) (*models.User, error)

	// MergeClientFields overwrites the client-writable subset of the
	// record from state, leaving server-authoritative fields untouched.
	MergeClientFields(ctx context.Context, telegramID int64, state *models.ClientState) (*models.User, error)

	// AddReferralTransaction appends an audit row for a referral credit.
	AddReferralTransaction(ctx context.Context, tx models.ReferralTransaction) error
}

// userLocks hands out one mutex per user id.
type userLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{m: make(map[int64]*sync.Mutex)}
}

func (l *userLocks) lock(telegramID int64) func() {
	l.mu.Lock()
	lk, ok := l.m[telegramID]
	if !ok {
		lk = &sync.Mutex{}
		l.m[telegramID] = lk
	}
	l.mu.Unlock()

	lk.Lock()
	return lk.Unlock
}
