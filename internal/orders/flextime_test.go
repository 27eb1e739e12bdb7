package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type dateDoc struct {
	Date FlexTime `bson:"date"`
}

func TestFlexTimeDecodesNativeDatetime(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	raw, err := bson.Marshal(bson.M{"date": want})
	require.NoError(t, err)

	var doc dateDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.True(t, doc.Date.Equal(want), "got %v", doc.Date)
}

func TestFlexTimeDecodesISOString(t *testing.T) {
	// legacy call sites wrote ISO strings instead of datetimes
	for _, s := range []string{
		"2024-05-01T10:30:00Z",
		"2024-05-01T10:30:00.250Z",
		"2024-05-01T12:30:00+02:00",
	} {
		raw, err := bson.Marshal(bson.M{"date": s})
		require.NoError(t, err)

		var doc dateDoc
		require.NoError(t, bson.Unmarshal(raw, &doc), "input %q", s)
		assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC).Unix(), doc.Date.Unix(), "input %q", s)
	}
}

func TestFlexTimeRejectsGarbage(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"date": "next tuesday"})
	require.NoError(t, err)

	var doc dateDoc
	assert.Error(t, bson.Unmarshal(raw, &doc))
}

func TestFlexTimeRoundTrip(t *testing.T) {
	in := dateDoc{Date: Now()}

	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var out dateDoc
	require.NoError(t, bson.Unmarshal(raw, &out))
	// BSON datetimes carry millisecond precision
	assert.WithinDuration(t, in.Date.Time, out.Date.Time, time.Millisecond)
}
