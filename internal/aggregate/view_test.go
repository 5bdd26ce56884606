package aggregate_test

import (
	"testing"
	"time"

	"github.com/crashdeck/crash-data-service/internal/aggregate"
	"github.com/crashdeck/crash-data-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(game, platform string, count int, typ domain.CrashType, network, ym string) domain.NormalizedRecord {
	r := domain.NormalizedRecord{
		Game:        game,
		Platform:    platform,
		CrashCount:  count,
		CrashType:   typ,
		NetworkName: network,
		YearMonth:   ym,
	}
	if ym != "" {
		d, err := time.Parse("2006-01", ym)
		if err == nil {
			r.Date = d
			r.HasDate = true
		}
	}
	return r
}

func sampleRecords() []domain.NormalizedRecord {
	return []domain.NormalizedRecord{
		rec("Alpha", "Android", 100, domain.CrashFatal, "Unknown", "2024-01"),
		rec("Alpha", "iOS", 50, domain.CrashANR, "AppLovin", "2024-02"),
		rec("Beta", "Android", 150, domain.CrashNetwork, "Unity", "2024-01"),
		rec("Beta", "Android", 0, domain.CrashNonFatal, "AppLovin", "2024-03"),
		rec("Gamma", "iOS", 150, domain.CrashFatal, "Unknown", "2024-02"),
	}
}

func TestApply_Conjunctive(t *testing.T) {
	records := sampleRecords()

	t.Run("no restriction", func(t *testing.T) {
		assert.Len(t, aggregate.Apply(records, aggregate.Filter{}), 5)
	})

	t.Run("by game", func(t *testing.T) {
		got := aggregate.Apply(records, aggregate.Filter{Games: []string{"Alpha"}})
		assert.Len(t, got, 2)
	})

	t.Run("game and platform", func(t *testing.T) {
		got := aggregate.Apply(records, aggregate.Filter{
			Games:     []string{"Alpha", "Beta"},
			Platforms: []string{"Android"},
		})
		assert.Len(t, got, 3)
	})

	t.Run("inclusive date range", func(t *testing.T) {
		from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		got := aggregate.Apply(records, aggregate.Filter{From: from, To: to})
		assert.Len(t, got, 3) // both boundary months included
	})

	t.Run("dateless records excluded by date filter", func(t *testing.T) {
		records := []domain.NormalizedRecord{rec("Alpha", "Android", 10, domain.CrashFatal, "Unknown", "")}
		got := aggregate.Apply(records, aggregate.Filter{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
		assert.Empty(t, got)
	})
}

func TestCrashesByGame(t *testing.T) {
	got := aggregate.CrashesByGame(sampleRecords())

	// Alpha and Gamma tie at 150; the tie breaks by name ascending.
	require.Len(t, got, 3)
	assert.Equal(t, aggregate.Entry{Key: "Alpha", Value: 150}, got[0])
	assert.Equal(t, aggregate.Entry{Key: "Beta", Value: 150}, got[1])
	assert.Equal(t, aggregate.Entry{Key: "Gamma", Value: 150}, got[2])
}

func TestCrashesByGame_Empty(t *testing.T) {
	got := aggregate.CrashesByGame(nil)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestCrashesByGamePlatform(t *testing.T) {
	got := aggregate.CrashesByGamePlatform(sampleRecords())

	require.Len(t, got, 4)
	assert.Equal(t, aggregate.GamePlatformEntry{Game: "Alpha", Platform: "Android", Crashes: 100}, got[0])
	assert.Equal(t, aggregate.GamePlatformEntry{Game: "Alpha", Platform: "iOS", Crashes: 50}, got[1])
	assert.Equal(t, aggregate.GamePlatformEntry{Game: "Beta", Platform: "Android", Crashes: 150}, got[2])
	assert.Equal(t, aggregate.GamePlatformEntry{Game: "Gamma", Platform: "iOS", Crashes: 150}, got[3])
}

func TestCountByType(t *testing.T) {
	got := aggregate.CountByType(sampleRecords())

	require.Len(t, got, 4)
	assert.Equal(t, aggregate.Entry{Key: "Fatal", Value: 2}, got[0])
	// The three single-count types order by label.
	assert.Equal(t, aggregate.Entry{Key: "ANR", Value: 1}, got[1])
	assert.Equal(t, aggregate.Entry{Key: "Network", Value: 1}, got[2])
	assert.Equal(t, aggregate.Entry{Key: "Non-fatal", Value: 1}, got[3])
}

func TestTopNetworks(t *testing.T) {
	got := aggregate.TopNetworks(sampleRecords(), 10)

	require.Len(t, got, 2)
	assert.Equal(t, aggregate.Entry{Key: "AppLovin", Value: 2}, got[0])
	assert.Equal(t, aggregate.Entry{Key: "Unity", Value: 1}, got[1])

	t.Run("limit applies", func(t *testing.T) {
		got := aggregate.TopNetworks(sampleRecords(), 1)
		require.Len(t, got, 1)
		assert.Equal(t, "AppLovin", got[0].Key)
	})

	t.Run("unknown excluded entirely", func(t *testing.T) {
		records := []domain.NormalizedRecord{rec("A", "Android", 1, domain.CrashFatal, domain.Unknown, "")}
		assert.Empty(t, aggregate.TopNetworks(records, 10))
	})
}

func TestCrashesByMonth(t *testing.T) {
	got := aggregate.CrashesByMonth(sampleRecords())

	require.Len(t, got, 3)
	assert.Equal(t, aggregate.Entry{Key: "2024-01", Value: 250}, got[0])
	assert.Equal(t, aggregate.Entry{Key: "2024-02", Value: 200}, got[1])
	assert.Equal(t, aggregate.Entry{Key: "2024-03", Value: 0}, got[2])
}

func TestSummarize(t *testing.T) {
	got := aggregate.Summarize(sampleRecords())

	assert.Equal(t, aggregate.Summary{
		TotalCrashes: 450,
		Games:        3,
		Platforms:    2,
		Reports:      5,
	}, got)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, aggregate.Summary{}, aggregate.Summarize(nil))
}
