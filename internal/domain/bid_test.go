package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBidConfig(t *testing.T) {
	cfg := ParseBidConfig(`{"origin":"JFK","destination":"LHR","fareType":"group","autoAward":true}`)
	assert.Equal(t, "JFK", cfg.Origin)
	assert.Equal(t, "LHR", cfg.Destination)
	assert.Equal(t, "group", cfg.FareType)
	assert.True(t, cfg.AutoAward)
}

func TestParseBidConfig_TolerantReader(t *testing.T) {
	assert.Equal(t, BidConfig{}, ParseBidConfig(""))
	assert.Equal(t, BidConfig{}, ParseBidConfig("{broken"))
	assert.Equal(t, BidConfig{}, ParseBidConfig("[]"))
}

func TestExpireNotes_StampsPaymentInfo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	out := ExpireNotes(`{"origin":"JFK","paymentInfo":{"deposit":"held"}}`, now)

	var doc map[string]any
	assert.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "JFK", doc["origin"])

	info := doc["paymentInfo"].(map[string]any)
	assert.Equal(t, "expired", info["paymentStatus"])
	assert.Equal(t, "flight_departed", info["reason"])
	assert.Equal(t, "held", info["deposit"])
	assert.Equal(t, "2026-03-01T12:00:00Z", info["expiredAt"])
}

func TestExpireNotes_MalformedInput(t *testing.T) {
	out := ExpireNotes("{not json", time.Now())

	var doc map[string]any
	assert.NoError(t, json.Unmarshal([]byte(out), &doc))
	info := doc["paymentInfo"].(map[string]any)
	assert.Equal(t, "expired", info["paymentStatus"])
}
