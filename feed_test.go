package apcaledger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFeedPages(t *testing.T) {
	feed := NewMemoryFeed("USD", []Activity{
		dayActivity("a", "2021-03-01"),
		dayActivity("b", "2021-03-02"),
		dayActivity("c", "2021-03-03"),
	})
	ctx := context.Background()

	page, err := feed.Activities(ctx, ActivityRequest{Direction: Ascending, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(page))

	page, err = feed.Activities(ctx, ActivityRequest{Direction: Ascending, PageSize: 2, PageToken: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(page))

	page, err = feed.Activities(ctx, ActivityRequest{Direction: Ascending, PageSize: 2, PageToken: "c"})
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = feed.Activities(ctx, ActivityRequest{Direction: Ascending, After: at("2021-03-01 00:00")})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ids(page))

	_, err = feed.Activities(ctx, ActivityRequest{Direction: Ascending, PageToken: "nope"})
	assert.Error(t, err)
	_, err = feed.Activities(ctx, ActivityRequest{Direction: Descending})
	assert.Error(t, err)
}

func TestMemoryFeedPipeline(t *testing.T) {
	var activities []Activity
	for _, page := range threeDays().pages {
		activities = append(activities, page...)
	}
	// pages of one activity move the day boundary across every page.
	p := testPipeline(NewMemoryFeed("USD", activities))
	p.PageSize = 1
	var got bytes.Buffer
	require.NoError(t, p.Run(context.Background(), &got))

	want := testPipeline(threeDays())
	var expected bytes.Buffer
	require.NoError(t, want.Run(context.Background(), &expected))
	assert.Equal(t, expected.String(), got.String())
	assert.Equal(t, want.Summary, p.Summary)
}
