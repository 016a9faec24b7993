package alpaca

import (
	"strings"
	"testing"

	"github.com/etnz/apcaledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActivities(t *testing.T) {
	activities, err := DecodeActivities(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, activities, 4)
	assert.Equal(t, "20210301133000000::a1", activities[0].ActivityID())
	assert.IsType(t, apcaledger.Trade{}, activities[0])
	assert.IsType(t, apcaledger.NonTrade{}, activities[3])
}

func TestDecodeActivitiesErrors(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"not an array", `{"id": "x"}`, "decoding activities"},
		{"short sale without price", `[{"id":"x","activity_type":"FILL","transaction_time":"2021-03-01T14:30:00Z","side":"sell_short","qty":"1"}]`, "no price or quantity"},
		{"bad date", `[{"id":"x","activity_type":"DIV","date":"March 1st","net_amount":"1"}]`, "DIV activity x"},
		{"bad amount", `[{"id":"x","activity_type":"DIV","date":"2021-03-01","net_amount":"a lot"}]`, "decoding activity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeActivities(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecodeShortSale(t *testing.T) {
	activities, err := DecodeActivities(strings.NewReader(`[{"id":"x","activity_type":"FILL","transaction_time":"2021-03-01T14:30:00Z",
		"side":"sell_short","price":"10","qty":"3","cum_qty":"3","leaves_qty":"0","order_id":"o","symbol":"XYZ"}]`))
	require.NoError(t, err)
	trade := activities[0].(apcaledger.Trade)
	assert.Equal(t, apcaledger.ShortSell, trade.Side)
	assert.False(t, trade.IsPartial())
}
