package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.UTC)
}

func TestSeedingWindowContains(t *testing.T) {
	t.Run("unset window is always active", func(t *testing.T) {
		w := SeedingWindow{}
		assert.True(t, w.Contains(at(3, 0)))
		assert.True(t, w.Contains(at(23, 59)))
	})

	t.Run("start equal to end is always active", func(t *testing.T) {
		w := SeedingWindow{Set: true, Start: 8 * time.Hour, End: 8 * time.Hour}
		assert.True(t, w.Contains(at(8, 0)))
		assert.True(t, w.Contains(at(20, 0)))
	})

	t.Run("same-day window", func(t *testing.T) {
		w := SeedingWindow{Set: true, Start: 9 * time.Hour, End: 17 * time.Hour}
		assert.False(t, w.Contains(at(8, 59)))
		assert.True(t, w.Contains(at(9, 0)))
		assert.True(t, w.Contains(at(12, 30)))
		assert.True(t, w.Contains(at(16, 59)))
		// End bound is exclusive, matching the midnight-crossing case
		assert.False(t, w.Contains(at(17, 0)))
	})

	t.Run("window crossing midnight", func(t *testing.T) {
		w := SeedingWindow{Set: true, Start: 22 * time.Hour, End: 6 * time.Hour}
		assert.True(t, w.Contains(at(23, 0)))
		assert.True(t, w.Contains(at(2, 0)))
		assert.True(t, w.Contains(at(5, 59)))
		assert.False(t, w.Contains(at(6, 0)))
		assert.False(t, w.Contains(at(12, 0)))
	})
}

func TestParseSeedingWindow(t *testing.T) {
	t.Run("both unset", func(t *testing.T) {
		w, err := parseSeedingWindow("", "")
		require.NoError(t, err)
		assert.False(t, w.Set)
	})

	t.Run("only one set leaves window disabled", func(t *testing.T) {
		w, err := parseSeedingWindow("08:00", "")
		require.NoError(t, err)
		assert.False(t, w.Set)
	})

	t.Run("valid window", func(t *testing.T) {
		w, err := parseSeedingWindow("22:30", "06:00")
		require.NoError(t, err)
		assert.True(t, w.Set)
		assert.Equal(t, 22*time.Hour+30*time.Minute, w.Start)
		assert.Equal(t, 6*time.Hour, w.End)
	})

	t.Run("invalid time string", func(t *testing.T) {
		_, err := parseSeedingWindow("25:00", "06:00")
		assert.Error(t, err)
	})
}
