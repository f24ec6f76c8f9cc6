package game

// itemPrices is the server-side price table for purchasable buckets, in
// Telegram Stars. Prices never come from the client. The default bucket is
// free and is not listed here.
var itemPrices = map[string]int{
	"crate":   150,
	"golden":  250,
	"rainbow": 400,
	"tech":    500,
	"claw":    750,
	"crown":   1000,
}

// ItemPrice returns the Stars price for itemID, or false for items that are
// not for sale.
func ItemPrice(itemID string) (int, bool) {
	price, ok := itemPrices[itemID]
	return price, ok
}
