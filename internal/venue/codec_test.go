package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model/enum"
)

func TestDecodeSecurities(t *testing.T) {
	payload := []byte(`[
		{"ticker":"ABC","bid":49.90,"ask":50.10,"last":50.00},
		{"ticker":"XYZ","bid":24.95,"ask":25.05,"last":25.00}
	]`)

	securities, err := DecodeSecurities(payload)
	require.NoError(t, err)
	require.Len(t, securities, 2)

	assert.Equal(t, "ABC", securities[0].Ticker)
	assert.InDelta(t, 49.90, securities[0].Quote.Bid, 1e-9)
	assert.InDelta(t, 50.10, securities[0].Quote.Ask, 1e-9)
	assert.True(t, securities[0].Quote.Valid())
}

func TestDecodeSecuritiesBadJSON(t *testing.T) {
	_, err := DecodeSecurities([]byte(`{"not":"a list"`))
	assert.Error(t, err)
}

func TestDecodeTenderOffers(t *testing.T) {
	payload := []byte(`[
		{"tender_id":12,"ticker":"ABC","action":"sell","quantity":1000,"price":51.00,"tick":200}
	]`)

	offers, err := DecodeTenderOffers(payload)
	require.NoError(t, err)
	require.Len(t, offers, 1)

	offer := offers[0]
	assert.Equal(t, int64(12), offer.ID)
	assert.Equal(t, enum.SideSell, offer.Side)
	assert.InDelta(t, 51.0, offer.Price, 1e-9)
	require.NoError(t, offer.Validate())
}

func TestDecodeTenderOffersMissingFieldsPassThrough(t *testing.T) {
	// A structurally valid entry with missing fields must decode, not fail;
	// rejection with a reason is the evaluator's job.
	payload := []byte(`[{"tender_id":13,"ticker":"ABC","action":"HOLD","price":51.00}]`)

	offers, err := DecodeTenderOffers(payload)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Error(t, offers[0].Validate())
}

func TestDecodeOrderBook(t *testing.T) {
	payload := []byte(`{
		"bids":[{"price":49.90,"quantity":1200},{"price":49.80,"quantity":1800}],
		"asks":[{"price":50.10,"quantity":2000}]
	}`)

	book, err := DecodeOrderBook(payload)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), book.BidVolume())
	assert.Equal(t, int64(2000), book.AskVolume())
	assert.InDelta(t, 49.9, book.Bids[0].Price, 1e-9)
}
