package venue

import (
	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/internal/model"
	"main/internal/model/enum"
)

// securityPayload mirrors the venue's securities JSON entry.
type securityPayload struct {
	Ticker string          `json:"ticker"`
	Bid    decimal.Decimal `json:"bid"`
	Ask    decimal.Decimal `json:"ask"`
	Last   decimal.Decimal `json:"last"`
	Tick   int64           `json:"tick"`
}

// tenderPayload mirrors the venue's tender offer JSON entry.
type tenderPayload struct {
	TenderID int64           `json:"tender_id"`
	Ticker   string          `json:"ticker"`
	Action   string          `json:"action"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Tick     int             `json:"tick"`
}

// bookLevelPayload mirrors one order book level.
type bookLevelPayload struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// bookPayload mirrors the venue's order book JSON.
type bookPayload struct {
	Bids []bookLevelPayload `json:"bids"`
	Asks []bookLevelPayload `json:"asks"`
}

// Security is one decoded securities entry.
type Security struct {
	Ticker string
	Quote  model.Quote
}

// DecodeSecurities parses the venue's securities payload.
func DecodeSecurities(payload []byte) ([]Security, error) {
	var raw []securityPayload
	if err := sonic.ConfigFastest.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrap(err, "decode securities payload")
	}
	out := make([]Security, 0, len(raw))
	for _, entry := range raw {
		out = append(out, Security{
			Ticker: entry.Ticker,
			Quote: model.Quote{
				Bid:  entry.Bid.InexactFloat64(),
				Ask:  entry.Ask.InexactFloat64(),
				Last: entry.Last.InexactFloat64(),
			},
		})
	}
	return out, nil
}

// DecodeTenderOffers parses the venue's tender payload. Offers with missing
// or unknown fields are passed through with zero values: the evaluator
// rejects them with an explicit reason instead of this layer raising.
func DecodeTenderOffers(payload []byte) ([]model.TenderOffer, error) {
	var raw []tenderPayload
	if err := sonic.ConfigFastest.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrap(err, "decode tender payload")
	}
	out := make([]model.TenderOffer, 0, len(raw))
	for _, entry := range raw {
		side, _ := enum.ParseSide(entry.Action)
		out = append(out, model.TenderOffer{
			ID:       entry.TenderID,
			Ticker:   entry.Ticker,
			Side:     side,
			Quantity: entry.Quantity,
			Price:    entry.Price.InexactFloat64(),
			Tick:     entry.Tick,
		})
	}
	return out, nil
}

// DecodeOrderBook parses the venue's order book payload.
func DecodeOrderBook(payload []byte) (model.OrderBookSnapshot, error) {
	var raw bookPayload
	if err := sonic.ConfigFastest.Unmarshal(payload, &raw); err != nil {
		return model.OrderBookSnapshot{}, errors.Wrap(err, "decode order book payload")
	}
	book := model.OrderBookSnapshot{
		Bids: make([]model.BookLevel, 0, len(raw.Bids)),
		Asks: make([]model.BookLevel, 0, len(raw.Asks)),
	}
	for _, lvl := range raw.Bids {
		book.Bids = append(book.Bids, model.BookLevel{Price: lvl.Price.InexactFloat64(), Quantity: lvl.Quantity})
	}
	for _, lvl := range raw.Asks {
		book.Asks = append(book.Asks, model.BookLevel{Price: lvl.Price.InexactFloat64(), Quantity: lvl.Quantity})
	}
	return book, nil
}
