package reckey

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeParseRoundTripWithoutFormat(t *testing.T) {
	event := uuid.New()
	start := time.Date(2024, 3, 17, 21, 30, 0, 0, time.UTC)

	key := Make(event, start, "")
	gotEvent, gotStart, err := Parse(key)
	require.NoError(t, err)
	assert.Equal(t, event, gotEvent)
	assert.True(t, gotStart.Equal(start))
}

func TestMakeParseRoundTripWithFormat(t *testing.T) {
	event := uuid.New()
	start := time.Date(2024, 3, 17, 21, 30, 0, 0, time.UTC)

	key := Make(event, start, "mp3")
	assert.Contains(t, key, ".mp3")

	gotEvent, gotStart, err := Parse(key)
	require.NoError(t, err)
	assert.Equal(t, event, gotEvent)
	assert.True(t, gotStart.Equal(start))
}

func TestPrefix(t *testing.T) {
	event := uuid.New()
	assert.Equal(t, event.String()+"/", Prefix(event))
}

func TestParseMalformedKey(t *testing.T) {
	_, _, err := Parse("no-slash-here")
	assert.Error(t, err)
}
