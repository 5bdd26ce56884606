// Package aggregate provides pure query functions over a normalized crash
// table. Everything here is stateless: callers pass the record slice from the
// current snapshot and get back deterministic ordered results, so the
// presentation layer can re-run queries freely as filters change.
package aggregate

import (
	"sort"
	"time"

	"github.com/crashdeck/crash-data-service/internal/domain"
)

// Filter narrows a record set. All conditions are conjunctive; the zero
// value applies no restriction. From/To bound the record date inclusively;
// records without a date never match a date-bounded filter.
type Filter struct {
	Games     []string
	Platforms []string
	From      time.Time
	To        time.Time
}

// Apply returns the records matching the filter, preserving order.
func Apply(records []domain.NormalizedRecord, f Filter) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, 0, len(records))
	for _, rec := range records {
		if f.matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (f Filter) matches(rec domain.NormalizedRecord) bool {
	if len(f.Games) > 0 && !contains(f.Games, rec.Game) {
		return false
	}
	if len(f.Platforms) > 0 && !contains(f.Platforms, rec.Platform) {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		if !rec.HasDate {
			return false
		}
		if !f.From.IsZero() && rec.Date.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && rec.Date.After(f.To) {
			return false
		}
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Entry is one (key, aggregate) pair of a query result.
type Entry struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// GamePlatformEntry is one cell of the per-game, per-platform breakdown.
type GamePlatformEntry struct {
	Game     string `json:"game"`
	Platform string `json:"platform"`
	Crashes  int    `json:"crashes"`
}

// Summary mirrors the dashboard headline metrics for a filtered table.
type Summary struct {
	TotalCrashes int `json:"total_crashes"`
	Games        int `json:"games"`
	Platforms    int `json:"platforms"`
	Reports      int `json:"reports"`
}

// CrashesByGame sums crash counts per game, largest first; ties break by
// game name ascending. An empty input yields an empty (never nil-error) result.
func CrashesByGame(records []domain.NormalizedRecord) []Entry {
	sums := make(map[string]int)
	for _, rec := range records {
		sums[rec.Game] += rec.CrashCount
	}
	return sortedEntries(sums, byValueDesc)
}

// CrashesByGamePlatform sums crash counts per (game, platform) pair, ordered
// by game then platform ascending.
func CrashesByGamePlatform(records []domain.NormalizedRecord) []GamePlatformEntry {
	type key struct{ game, platform string }
	sums := make(map[key]int)
	for _, rec := range records {
		sums[key{rec.Game, rec.Platform}] += rec.CrashCount
	}

	out := make([]GamePlatformEntry, 0, len(sums))
	for k, v := range sums {
		out = append(out, GamePlatformEntry{Game: k.game, Platform: k.platform, Crashes: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Game != out[j].Game {
			return out[i].Game < out[j].Game
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

// CountByType counts records per crash type, largest first; ties break by
// label ascending.
func CountByType(records []domain.NormalizedRecord) []Entry {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[string(rec.CrashType)]++
	}
	return sortedEntries(counts, byValueDesc)
}

// TopNetworks counts records per ad network, excluding Unknown, and returns
// at most n entries, largest first with ties by name ascending. n <= 0 means
// no limit.
func TopNetworks(records []domain.NormalizedRecord, n int) []Entry {
	counts := make(map[string]int)
	for _, rec := range records {
		if rec.NetworkName == domain.Unknown {
			continue
		}
		counts[rec.NetworkName]++
	}
	out := sortedEntries(counts, byValueDesc)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CrashesByMonth sums crash counts per year-month key in chronological
// order. Records without a date carry no key and are skipped.
func CrashesByMonth(records []domain.NormalizedRecord) []Entry {
	sums := make(map[string]int)
	for _, rec := range records {
		if rec.YearMonth == "" {
			continue
		}
		sums[rec.YearMonth] += rec.CrashCount
	}
	// "2006-01" keys sort chronologically as strings.
	return sortedEntries(sums, byKeyAsc)
}

// Summarize computes the headline metrics over a filtered table.
func Summarize(records []domain.NormalizedRecord) Summary {
	games := make(map[string]struct{})
	platforms := make(map[string]struct{})
	total := 0
	for _, rec := range records {
		total += rec.CrashCount
		games[rec.Game] = struct{}{}
		platforms[rec.Platform] = struct{}{}
	}
	return Summary{
		TotalCrashes: total,
		Games:        len(games),
		Platforms:    len(platforms),
		Reports:      len(records),
	}
}

type entryOrder func(a, b Entry) bool

func byValueDesc(a, b Entry) bool {
	if a.Value != b.Value {
		return a.Value > b.Value
	}
	return a.Key < b.Key
}

func byKeyAsc(a, b Entry) bool {
	return a.Key < b.Key
}

func sortedEntries(m map[string]int, less entryOrder) []Entry {
	out := make([]Entry, 0, len(m))
	for k, v := range m {
		out = append(out, Entry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
