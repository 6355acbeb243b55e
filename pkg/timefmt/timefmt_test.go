package timefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochToString(t *testing.T) {
	tests := []struct {
		name  string
		epoch int64
		want  string
	}{
		{name: "zero yields empty", epoch: 0, want: ""},
		{name: "negative yields empty", epoch: -5, want: ""},
		{name: "epoch seconds", epoch: 1735689600, want: "01-01-2025 00:00:00"},
		{name: "epoch milliseconds", epoch: 1735689600000, want: "01-01-2025 00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EpochToString(tt.epoch))
		})
	}
}

func TestEpochToString_SecondsAndMillisAgree(t *testing.T) {
	const sec = int64(1756723845)
	assert.Equal(t, EpochToString(sec), EpochToString(sec*1000))
}

func TestParse(t *testing.T) {
	ts, err := Parse("15-06-2025 09:30:00")
	require.NoError(t, err)
	assert.Equal(t, 2025, ts.Year())
	assert.Equal(t, 6, int(ts.Month()))
	assert.Equal(t, 15, ts.Day())
	assert.Equal(t, 9, ts.Hour())

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrEmptyTimestamp)

	_, err = Parse("2025-06-15 09:30:00")
	assert.Error(t, err)
}

func TestSecondsBetween(t *testing.T) {
	secs, err := SecondsBetween("15-06-2025 09:30:00", "15-06-2025 10:15:30")
	require.NoError(t, err)
	assert.Equal(t, 2730, secs)

	_, err = SecondsBetween("", "15-06-2025 10:15:30")
	assert.Error(t, err)
}

func TestEpochRoundTrip(t *testing.T) {
	s := EpochToString(1735689600)
	ts, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, int64(1735689600), ts.Unix())
}
