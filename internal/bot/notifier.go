package bot

import (
	"context"
	"fmt"

	tu "github.com/mymmrac/telego/telegoutil"
)

// ReferralCredited tells the referrer a friend joined through their link.
// It runs after the credit has committed and is strictly best-effort: every
// failure is logged and swallowed. A redis key per (referrer, referee) pair
// keeps retried registrations from producing duplicate messages.
func (b *Bot) ReferralCredited(ctx context.Context, referrerID, refereeID int64, reward float64) {
	go func() {
		// Detached from the request: the HTTP call that triggered the
		// credit must not wait on Telegram.
		ctx := context.WithoutCancel(ctx)

		if b.Redis != nil {
			key := fmt.Sprintf("ref_notified:%d:%d", referrerID, refereeID)
			exists, err := b.Redis.Exists(ctx, key).Result()
			if err == nil && exists > 0 {
				return
			}
			if err == nil {
				b.Redis.Set(ctx, key, "true", 0)
			}
		}

		_, err := b.Instance.SendMessage(ctx, tu.Message(
			tu.ID(referrerID),
			fmt.Sprintf("🎉 Congratulations! A friend joined using your link. You've been awarded %.0f ⭐️!", reward),
		))
		if err != nil {
			b.Log.Warn("referral_notification_failed", "referrer", referrerID, "error", err)
		}
	}()
}
