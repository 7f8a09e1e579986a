package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMsToSecondsRoundsToNearest(t *testing.T) {
	// 60000ms allotted, 15000ms left: 45000ms elapsed is 45 seconds.
	require.EqualValues(t, 45, MsToSeconds(60000-15000))

	require.EqualValues(t, 0, MsToSeconds(0))
	require.EqualValues(t, 0, MsToSeconds(499))
	require.EqualValues(t, 1, MsToSeconds(500))
	require.EqualValues(t, 1, MsToSeconds(1499))
	require.EqualValues(t, 2, MsToSeconds(1500))
}

func TestSecondsToMs(t *testing.T) {
	require.EqualValues(t, 40000, SecondsToMs(40))
}

func TestFormatClock(t *testing.T) {
	require.Equal(t, "1:00", FormatClock(60000))
	require.Equal(t, "0:05", FormatClock(5400))
	require.Equal(t, "10:09", FormatClock(609000))
	require.Equal(t, "0:00", FormatClock(0))
	require.Equal(t, "0:00", FormatClock(-100))
}
