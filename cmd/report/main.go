// Command report renders aggregate crash tables for a CSV export on the
// terminal, applying the same normalization and filters as the API.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/crashdeck/crash-data-service/internal/adapter/csvio"
	"github.com/crashdeck/crash-data-service/internal/aggregate"
	"github.com/crashdeck/crash-data-service/internal/domain"
)

func main() {
	var (
		input     = flag.String("input", "-", "CSV file to read, or - for stdin")
		games     = flag.String("games", "", "comma-separated game filter")
		platforms = flag.String("platforms", "", "comma-separated platform filter")
		from      = flag.String("from", "", "start date, YYYY-MM-DD inclusive")
		to        = flag.String("to", "", "end date, YYYY-MM-DD inclusive")
		topN      = flag.Int("top", 10, "number of ad networks to show")
	)
	flag.Parse()

	if err := run(*input, *games, *platforms, *from, *to, *topN); err != nil {
		slog.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(input, games, platforms, from, to string, topN int) error {
	filter, err := buildFilter(games, platforms, from, to)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	table, err := csvio.Decode(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	result := domain.NormalizeTable(table)
	records := aggregate.Apply(result.Records, filter)
	summary := aggregate.Summarize(records)

	fmt.Printf("Reports: %d (dropped %d unparseable rows)\n", summary.Reports, result.Dropped)
	fmt.Printf("Total crashes: %d across %d games on %d platforms\n", summary.TotalCrashes, summary.Games, summary.Platforms)

	printEntries("Crashes by game", aggregate.CrashesByGame(records))
	printEntries("Crashes by month", aggregate.CrashesByMonth(records))
	printEntries("Reports by crash type", aggregate.CountByType(records))
	printEntries(fmt.Sprintf("Top %d ad networks", topN), aggregate.TopNetworks(records, topN))

	return nil
}

func buildFilter(games, platforms, from, to string) (aggregate.Filter, error) {
	f := aggregate.Filter{
		Games:     splitList(games),
		Platforms: splitList(platforms),
	}

	var err error
	if from != "" {
		if f.From, err = time.Parse("2006-01-02", from); err != nil {
			return aggregate.Filter{}, fmt.Errorf("invalid -from date %q: want YYYY-MM-DD", from)
		}
	}
	if to != "" {
		if f.To, err = time.Parse("2006-01-02", to); err != nil {
			return aggregate.Filter{}, fmt.Errorf("invalid -to date %q: want YYYY-MM-DD", to)
		}
	}
	return f, nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// printEntries renders a two-column table padded to display width, so wide
// characters in game names keep the value column aligned.
func printEntries(title string, entries []aggregate.Entry) {
	fmt.Printf("\n%s\n", title)
	if len(entries) == 0 {
		fmt.Println("  (no data)")
		return
	}

	keyWidth := 0
	for _, e := range entries {
		if w := runewidth.StringWidth(e.Key); w > keyWidth {
			keyWidth = w
		}
	}

	for _, e := range entries {
		pad := keyWidth - runewidth.StringWidth(e.Key)
		fmt.Printf("  %s%s  %s\n", e.Key, strings.Repeat(" ", pad), strconv.Itoa(e.Value))
	}
}
