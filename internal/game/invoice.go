package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
)

// InvoiceLinker creates a payment link for one item at a given Stars price.
type InvoiceLinker interface {
	CreateInvoiceLink(ctx context.Context, itemID string, price int) (string, error)
}

// StarsInvoicer creates Telegram Stars invoice links through the bot API.
// Stars invoices use the XTR currency and an empty provider token.
type StarsInvoicer struct {
	bot *telego.Bot
}

func NewStarsInvoicer(bot *telego.Bot) *StarsInvoicer {
	return &StarsInvoicer{bot: bot}
}

func (i *StarsInvoicer) CreateInvoiceLink(ctx context.Context, itemID string, price int) (string, error) {
	link, err := i.bot.CreateInvoiceLink(ctx, &telego.CreateInvoiceLinkParams{
		Title:       "Starfall Galaxy Item",
		Description: fmt.Sprintf("Purchase of %s bucket for %d Stars.", itemID, price),
		Payload:     fmt.Sprintf("purchase_%s_%s", itemID, uuid.New().String()),
		Currency:    "XTR",
		Prices: []telego.LabeledPrice{
			{Label: "Total Price", Amount: price},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create invoice link: %w", err)
	}
	return *link, nil
}
