// Package game orchestrates the verifier, user store and referral ledger
// behind the operations the mini-app client calls.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/referral"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/store"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/telegram"
)

type RegistrationStatus string

const (
	StatusNewlyRegistered   RegistrationStatus = "newly_registered"
	StatusAlreadyRegistered RegistrationStatus = "already_registered"
)

// refCodePattern is the only referral start_param shape that is honored.
// Anything else is ignored without error.
var refCodePattern = regexp.MustCompile(`^ref_(\d+)$`)

// ErrUnknownItem rejects invoice requests for items that are not for sale.
var ErrUnknownItem = errors.New("item not found or not for sale")

type RegisterResult struct {
	Status RegistrationStatus `json:"status"`
	User   *models.User       `json:"user"`
}

type Service struct {
	store    store.Store
	ledger   *referral.Ledger
	invoices InvoiceLinker
	botToken string
	log      *slog.Logger
}

// NewService wires the service. invoices may be nil when invoice creation is
// not exposed (tests, bot-only deployments).
func NewService(st store.Store, ledger *referral.Ledger, invoices InvoiceLinker, botToken string, log *slog.Logger) *Service {
	return &Service{
		store:    st,
		ledger:   ledger,
		invoices: invoices,
		botToken: botToken,
		log:      log,
	}
}

// authenticate verifies the signed payload before anything touches the
// store. All failures collapse into models.ErrAuth for the caller.
func (s *Service) authenticate(initData string) (*telegram.InitData, error) {
	data, err := telegram.Validate(initData, s.botToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAuth, err)
	}
	return data, nil
}

// Register creates the player record on first authenticated contact. A
// well-formed referral code is processed once, at creation time only;
// repeated calls return AlreadyRegistered and never re-credit. A rejected
// referral withholds the bonus but never fails the registration.
func (s *Service) Register(ctx context.Context, initData, startParam string) (*RegisterResult, error) {
	data, err := s.authenticate(initData)
	if err != nil {
		return nil, err
	}
	id := data.User.ID

	if startParam == "" {
		startParam = data.StartParam
	}

	user, created, err := s.store.Upsert(ctx, id, func() *models.User {
		return models.NewUser(id, data.User.FirstName, data.User.Username)
	})
	if err != nil {
		return nil, err
	}

	if !created {
		// Profile fields are last-write-wins; refresh them from the
		// authenticated identity.
		user, err = s.store.Update(ctx, id, func(u *models.User) error {
			u.FirstName = data.User.FirstName
			u.Username = data.User.Username
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &RegisterResult{Status: StatusAlreadyRegistered, User: user}, nil
	}

	if referrerID, ok := parseRefCode(startParam); ok {
		outcome, err := s.ledger.RecordReferral(ctx, id, referrerID)
		if err != nil {
			// The player is registered either way; only the bonus is
			// withheld. The linkage write is retry-safe.
			s.log.Warn("referral_processing_failed", "referee", id, "referrer", referrerID, "error", err)
		} else {
			s.log.Info("referral_processed", "referee", id, "referrer", referrerID, "outcome", outcome.String())
		}
		if user, err = s.store.Get(ctx, id); err != nil {
			return nil, err
		}
	}

	return &RegisterResult{Status: StatusNewlyRegistered, User: user}, nil
}

// SyncState reconciles client-submitted save-state into the record. Unknown
// users are reported, not created: registering first keeps ownership of any
// prior referral state explicit.
func (s *Service) SyncState(ctx context.Context, initData string, state *models.ClientState) (*models.User, error) {
	data, err := s.authenticate(initData)
	if err != nil {
		return nil, err
	}
	return s.store.MergeClientFields(ctx, data.User.ID, state)
}

// ClaimRewards drains the caller's pending referral rewards.
func (s *Service) ClaimRewards(ctx context.Context, initData string) (float64, error) {
	data, err := s.authenticate(initData)
	if err != nil {
		return 0, err
	}
	return s.ledger.Claim(ctx, data.User.ID)
}

// CreateInvoice validates the request and returns a Telegram Stars invoice
// link for itemID at the server-side price.
func (s *Service) CreateInvoice(ctx context.Context, initData, itemID string) (string, error) {
	if _, err := s.authenticate(initData); err != nil {
		return "", err
	}

	price, ok := ItemPrice(itemID)
	if !ok {
		return "", ErrUnknownItem
	}
	return s.invoices.CreateInvoiceLink(ctx, itemID, price)
}

func parseRefCode(code string) (int64, bool) {
	m := refCodePattern.FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
