// Package worker runs the background sweep that reminds players about
// unclaimed referral rewards.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
)

// remindAfter is how long rewards may sit unclaimed before a reminder goes
// out; the redis dedup key keeps it to one reminder per accumulation window.
const remindAfter = 24 * time.Hour

type Reminder struct {
	DB    *gorm.DB
	Redis *redis.Client
	Bot   *telego.Bot
	Log   *slog.Logger
}

func NewReminder(db *gorm.DB, rdb *redis.Client, bot *telego.Bot, log *slog.Logger) *Reminder {
	return &Reminder{
		DB:    db,
		Redis: rdb,
		Bot:   bot,
		Log:   log,
	}
}

func (r *Reminder) Start(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	r.Log.Info("reward_reminder_worker_started")

	r.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reminder) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-remindAfter)

	var users []models.User
	err := r.DB.WithContext(ctx).
		Where("pending_rewards > 0 AND updated_at < ?", cutoff).
		Find(&users).Error
	if err != nil {
		r.Log.Error("reminder_query_failed", "error", err)
		return
	}

	for _, user := range users {
		key := fmt.Sprintf("reward_reminded:%d", user.TelegramID)
		exists, err := r.Redis.Exists(ctx, key).Result()
		if err != nil || exists > 0 {
			continue
		}

		_, err = r.Bot.SendMessage(ctx, tu.Message(
			tu.ID(user.TelegramID),
			fmt.Sprintf("⭐️ You have %.0f unclaimed referral reward(s) waiting! Open Starfall Galaxy to claim them.", user.PendingRewards),
		))
		if err != nil {
			r.Log.Warn("reminder_send_failed", "user", user.TelegramID, "error", err)
			continue
		}
		// Re-armed only after the current rewards are claimed and new
		// ones accumulate past the cutoff again.
		r.Redis.Set(ctx, key, "true", 7*24*time.Hour)
	}
}
