package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var armenia = Region{LonMin: 43.45, LonMax: 47.17, LatMin: 38.84, LatMax: 41.3}

const feed2020 = `Time Months Year Day Latitude Longitude Radiance
2020-152T13:04:05.123Z [Jun 2020] 152 40.1000, 44.5000) 0.5
2020-153T02:10:00.5Z [Jun 2020] 153 39.5000, 45.2500) 0.7

2020-999T10:00:00.0Z [Aug 2020] 999 40.0000, 44.0000) 0.2
2020-200T23:59:59.999Z [Jul 2020] 200 41.3000, 47.1700) 0.1
2020-201T11:00:00.0Z [Jul 2020] 201 52.0000, 13.4000) 0.3
`

func TestParseFeed_EndToEnd(t *testing.T) {
	var dropped []*RowError
	strikes, stats, err := ParseFeed(strings.NewReader(feed2020), armenia, func(e *RowError) {
		dropped = append(dropped, e)
	})
	require.NoError(t, err)

	expected := []Strike{
		{Hour: 13, Month: "Jun", Lat: 40.1, Lon: 44.5, Line: 2},
		{Hour: 2, Month: "Jun", Lat: 39.5, Lon: 45.25, Line: 3},
		{Hour: 23, Month: "Jul", Lat: 41.3, Lon: 47.17, Line: 6},
	}
	assert.Equal(t, expected, strikes)

	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 3, stats.Kept)
	assert.Equal(t, 1, stats.OutOfRegion)
	assert.Equal(t, 1, stats.Malformed[ColumnTime])
	assert.Equal(t, 1, stats.MalformedTotal())

	require.Len(t, dropped, 1)
	assert.Equal(t, 5, dropped[0].Line)
	assert.Equal(t, ColumnTime, dropped[0].Column)
}

func TestParseFeed_InvariantsHold(t *testing.T) {
	strikes, _, err := ParseFeed(strings.NewReader(feed2020), armenia, nil)
	require.NoError(t, err)

	for _, s := range strikes {
		assert.True(t, armenia.Contains(s.Lat, s.Lon), "strike %+v outside region", s)
		assert.GreaterOrEqual(t, s.Hour, 0)
		assert.LessOrEqual(t, s.Hour, 23)
	}
}

func TestParseFeed_Idempotent(t *testing.T) {
	first, _, err := ParseFeed(strings.NewReader(feed2020), armenia, nil)
	require.NoError(t, err)
	second, _, err := ParseFeed(strings.NewReader(feed2020), armenia, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseFeed_HeaderOnly(t *testing.T) {
	strikes, stats, err := ParseFeed(strings.NewReader("Time Months Year Day Latitude Longitude\n"), armenia, nil)
	require.NoError(t, err)

	assert.NotNil(t, strikes)
	assert.Empty(t, strikes)
	assert.Zero(t, stats.Rows)
}

func TestParseFeed_Empty(t *testing.T) {
	strikes, stats, err := ParseFeed(strings.NewReader(""), armenia, nil)
	require.NoError(t, err)
	assert.Empty(t, strikes)
	assert.Zero(t, stats.Rows)
}

func TestParseFeed_HeaderIsNeverData(t *testing.T) {
	// A header that happens to look like data is still skipped.
	input := "2020-152T13:04:05.123Z [Jun 2020] 152 40.1, 44.5)\n" +
		"2020-152T14:04:05.123Z [Jun 2020] 152 40.2, 44.6)\n"
	strikes, _, err := ParseFeed(strings.NewReader(input), armenia, nil)
	require.NoError(t, err)
	require.Len(t, strikes, 1)
	assert.Equal(t, 14, strikes[0].Hour)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestParseFeed_ReadErrorIsSourceUnavailable(t *testing.T) {
	_, _, err := ParseFeed(failingReader{}, armenia, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFeedStats_MalformedTotal(t *testing.T) {
	stats := FeedStats{Malformed: map[Column]int{ColumnTime: 2, ColumnLatitude: 1, ColumnRow: 4}}
	assert.Equal(t, 7, stats.MalformedTotal())
}
