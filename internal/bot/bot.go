// Package bot runs the Telegram command surface: the launch keyboard, the
// balance and invite commands, and the outbound reward notifications.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/redis/go-redis/v9"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
	"github.com/MehedizYT/starfall-galaxy-tma/internal/store"
)

type Bot struct {
	Instance  *telego.Bot
	Store     store.Store
	Redis     *redis.Client
	Log       *slog.Logger
	WebAppURL string
}

func NewBot(token string, st store.Store, rdb *redis.Client, log *slog.Logger, webAppURL string) (*Bot, error) {
	tgBot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance:  tgBot,
		Store:     st,
		Redis:     rdb,
		Log:       log,
		WebAppURL: webAppURL,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	updates, _ := b.Instance.UpdatesViaLongPolling(ctx, nil)

	handler, _ := th.NewBotHandler(b.Instance, updates)

	// /start: make sure a record exists and hand out the launch button.
	// Referral codes ride the startapp deep link into the mini-app and are
	// processed by the registration endpoint, not here.
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		telegramID := message.From.ID

		_, _, err := b.Store.Upsert(ctx.Context(), telegramID, func() *models.User {
			return models.NewUser(telegramID, message.From.FirstName, message.From.Username)
		})
		if err != nil {
			b.Log.Warn("start_upsert_failed", "user", telegramID, "error", err)
		}

		keyboard := tu.InlineKeyboard(
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("Launch Starfall Galaxy ✨").WithWebApp(&telego.WebAppInfo{URL: b.WebAppURL}),
			),
		)

		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			"Welcome to Starfall Galaxy! 🚀\n\nClick the button below to start playing.",
		).WithReplyMarkup(keyboard))
		return nil
	}, th.CommandEqual("start"))

	// /balance
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		telegramID := update.Message.From.ID

		user, err := b.Store.Get(ctx.Context(), telegramID)
		if err != nil {
			_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
				tu.ID(update.Message.Chat.ID),
				"You haven't played yet! Start a game to get a balance.",
			))
			return nil
		}

		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID),
			fmt.Sprintf("Your current balance is: %.0f ⭐️", user.Stars),
		))
		return nil
	}, th.CommandEqual("balance"))

	// /invite
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		telegramID := update.Message.From.ID

		info, err := ctx.Bot().GetMe(ctx.Context())
		if err != nil {
			b.Log.Warn("get_me_failed", "error", err)
			return nil
		}

		inviteLink := fmt.Sprintf("https://t.me/%s?startapp=ref_%d", info.Username, telegramID)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID),
			fmt.Sprintf("Here is your personal invite link! Share it with friends. "+
				"You'll get 1 ⭐️ for each new player who joins through it.\n\n%s", inviteLink),
		))
		return nil
	}, th.CommandEqual("invite"))

	// /help
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID),
			"Commands:\n/start — launch the game\n/balance — your star balance\n/invite — your referral link",
		))
		return nil
	}, th.CommandEqual("help"))

	handler.Start()
}
