package game

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/logging"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/referral"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/store"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/telegram"
)

const testBotToken = "123456:TEST-TOKEN"

type fakeInvoicer struct {
	lastItem  string
	lastPrice int
}

func (f *fakeInvoicer) CreateInvoiceLink(ctx context.Context, itemID string, price int) (string, error) {
	f.lastItem = itemID
	f.lastPrice = price
	return "https://t.me/$test-invoice", nil
}

func newTestService(t *testing.T) (*Service, *store.Memory, *fakeInvoicer) {
	t.Helper()

	s := store.NewMemory()
	log := logging.New("error")
	inv := &fakeInvoicer{}
	svc := NewService(s, referral.NewLedger(s, log, nil), inv, testBotToken, log)
	return svc, s, inv
}

func initDataFor(t *testing.T, id int64, name string, startParam string) string {
	t.Helper()

	values := url.Values{}
	values.Set("user", fmt.Sprintf(`{"id":%d,"first_name":"%s","username":"%s_tg"}`, id, name, name))
	values.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	if startParam != "" {
		values.Set("start_param", startParam)
	}
	values.Set("hash", telegram.Sign(values, testBotToken))
	return values.Encode()
}

func TestRegister_RejectsForgedPayload(t *testing.T) {
	svc, s, _ := newTestService(t)

	_, err := svc.Register(context.Background(), initDataFor(t, 1, "A", "")+"x", "")
	assert.ErrorIs(t, err, models.ErrAuth)

	_, err = s.Get(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRegister_IsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, initDataFor(t, 1, "Ada", ""), "")
	require.NoError(t, err)
	assert.Equal(t, StatusNewlyRegistered, res.Status)
	assert.Nil(t, res.User.ReferredBy)

	res, err = svc.Register(ctx, initDataFor(t, 1, "Ada", ""), "")
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyRegistered, res.Status)
}

// The full referral scenario: A registers plain, B registers with A's code,
// duplicate registration never re-credits, claims drain exactly once.
func TestRegisterAndClaim_ReferralScenario(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()

	resA, err := svc.Register(ctx, initDataFor(t, 100, "A", ""), "")
	require.NoError(t, err)
	require.Equal(t, StatusNewlyRegistered, resA.Status)

	resB, err := svc.Register(ctx, initDataFor(t, 200, "B", ""), "ref_100")
	require.NoError(t, err)
	require.Equal(t, StatusNewlyRegistered, resB.Status)
	require.NotNil(t, resB.User.ReferredBy)
	assert.Equal(t, int64(100), *resB.User.ReferredBy)

	a, err := s.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.PendingRewards)

	// B resubmits the same code: AlreadyRegistered, no re-credit.
	resB, err = svc.Register(ctx, initDataFor(t, 200, "B", ""), "ref_100")
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyRegistered, resB.Status)

	a, err = s.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.PendingRewards)

	claimed, err := svc.ClaimRewards(ctx, initDataFor(t, 100, "A", ""))
	require.NoError(t, err)
	assert.Equal(t, 1.0, claimed)

	claimed, err = svc.ClaimRewards(ctx, initDataFor(t, 100, "A", ""))
	require.NoError(t, err)
	assert.Zero(t, claimed)
}

func TestRegister_SelfReferralStillRegisters(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, initDataFor(t, 7, "C", ""), "ref_7")
	require.NoError(t, err)
	assert.Equal(t, StatusNewlyRegistered, res.Status)

	c, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, c.ReferredBy)
	assert.Zero(t, c.PendingRewards)
}

func TestRegister_MalformedCodeIgnored(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, code := range []string{"ref_", "ref_abc", "REF_1", "1", "ref_1x", "friend_1"} {
		res, err := svc.Register(context.Background(), initDataFor(t, 50, "D", ""), code)
		require.NoError(t, err, "code %q", code)
		assert.Nil(t, res.User.ReferredBy, "code %q", code)
	}
}

func TestRegister_StartParamFromInitData(t *testing.T) {
	svc, s, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, initDataFor(t, 1, "A", ""), "")
	require.NoError(t, err)

	// No explicit startParam argument; code rides inside signed init data.
	res, err := svc.Register(ctx, initDataFor(t, 2, "B", "ref_1"), "")
	require.NoError(t, err)
	require.NotNil(t, res.User.ReferredBy)
	assert.Equal(t, int64(1), *res.User.ReferredBy)

	a, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.PendingRewards)
}

func TestRegister_RefreshesProfileFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, initDataFor(t, 1, "Old", ""), "")
	require.NoError(t, err)

	res, err := svc.Register(ctx, initDataFor(t, 1, "New", ""), "")
	require.NoError(t, err)
	assert.Equal(t, "New", res.User.FirstName)
}

func TestSyncState_RequiresRegistration(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SyncState(context.Background(), initDataFor(t, 9, "E", ""), &models.ClientState{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSyncState_MergesClientFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, initDataFor(t, 9, "E", ""), "")
	require.NoError(t, err)

	stars := 42.0
	user, err := svc.SyncState(ctx, initDataFor(t, 9, "E", ""), &models.ClientState{Stars: &stars})
	require.NoError(t, err)
	assert.Equal(t, 42.0, user.Stars)
}

func TestClaimRewards_AuthFailureTouchesNothing(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ClaimRewards(context.Background(), "hash=deadbeef")
	assert.ErrorIs(t, err, models.ErrAuth)
}

func TestCreateInvoice_LooksUpServerPrice(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	link, err := svc.CreateInvoice(ctx, initDataFor(t, 1, "A", ""), "crown")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/$test-invoice", link)
	assert.Equal(t, "crown", inv.lastItem)
	assert.Equal(t, 1000, inv.lastPrice)
}

func TestCreateInvoice_UnknownItem(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateInvoice(context.Background(), initDataFor(t, 1, "A", ""), "basic")
	assert.ErrorIs(t, err, ErrUnknownItem)

	_, err = svc.CreateInvoice(context.Background(), initDataFor(t, 1, "A", ""), "nope")
	assert.ErrorIs(t, err, ErrUnknownItem)
}
