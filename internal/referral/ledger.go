// Package referral maintains the referrer→referee edges and the pending
// reward each referrer has accumulated. Crediting happens exactly once per
// distinct referee, no matter how often a registration is retried.
package referral

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/store"
)

// RewardPerReferral is credited to the referrer for each new referee.
const RewardPerReferral = 1.0

// Outcome classifies a referral attempt. All four are ordinary results, not
// errors: a rejected referral never fails the registration that carried it.
type Outcome int

const (
	OutcomeCredited Outcome = iota
	OutcomeAlreadyReferred
	OutcomeSelfReferral
	OutcomeReferrerNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCredited:
		return "credited"
	case OutcomeAlreadyReferred:
		return "already_referred"
	case OutcomeSelfReferral:
		return "self_referral"
	case OutcomeReferrerNotFound:
		return "referrer_not_found"
	}
	return "unknown"
}

// Notifier is told about a credited referral after the credit has committed.
// Implementations must swallow their own failures; a lost notification never
// rolls back a credit.
type Notifier interface {
	ReferralCredited(ctx context.Context, referrerID, refereeID int64, reward float64)
}

var errAlreadyReferred = errors.New("referee already linked")

type Ledger struct {
	store    store.Store
	log      *slog.Logger
	notifier Notifier
}

// NewLedger builds a ledger over st. notifier may be nil.
func NewLedger(st store.Store, log *slog.Logger, notifier Notifier) *Ledger {
	return &Ledger{store: st, log: log, notifier: notifier}
}

// RecordReferral links refereeID to referrerID and credits the referrer.
// The referee's set-once linkage is written first; the referrer credit is
// the commit point and is keyed on the referee id, so a retry after a crash
// between the two writes cannot double-credit.
func (l *Ledger) RecordReferral(ctx context.Context, refereeID, referrerID int64) (Outcome, error) {
	if refereeID == referrerID {
		return OutcomeSelfReferral, nil
	}

	if _, err := l.store.Get(ctx, referrerID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return OutcomeReferrerNotFound, nil
		}
		return 0, err
	}

	_, err := l.store.Update(ctx, refereeID, func(u *models.User) error {
		if u.ReferredBy != nil {
			return errAlreadyReferred
		}
		u.ReferredBy = &referrerID
		return nil
	})
	if errors.Is(err, errAlreadyReferred) {
		return OutcomeAlreadyReferred, nil
	}
	if err != nil {
		return 0, err
	}

	credited := false
	_, err = l.store.Update(ctx, referrerID, func(u *models.User) error {
		for _, id := range u.Referrals {
			if id == refereeID {
				return nil
			}
		}
		u.Referrals = append(u.Referrals, refereeID)
		u.PendingRewards += RewardPerReferral
		credited = true
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !credited {
		// Retried commit after a partial failure; the first attempt won.
		return OutcomeCredited, nil
	}

	if err := l.store.AddReferralTransaction(ctx, models.ReferralTransaction{
		ReferrerID:    referrerID,
		InvitedUserID: refereeID,
		Amount:        RewardPerReferral,
		CreatedAt:     time.Now(),
	}); err != nil {
		l.log.Warn("referral_audit_row_failed", "referrer", referrerID, "referee", refereeID, "error", err)
	}

	if l.notifier != nil {
		l.notifier.ReferralCredited(ctx, referrerID, refereeID, RewardPerReferral)
	}
	return OutcomeCredited, nil
}

// Claim atomically drains the pending-reward accumulator and returns the
// drained amount. Claiming with nothing pending returns 0.
func (l *Ledger) Claim(ctx context.Context, userID int64) (float64, error) {
	var claimed float64
	_, err := l.store.Update(ctx, userID, func(u *models.User) error {
		claimed = u.PendingRewards
		u.PendingRewards = 0
		return nil
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}
