package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Semantically interpreted column names. Matching happens after header
// cleanup, so embedded newlines in the source header do not hide a column.
const (
	colDate     = "Date"
	colGame     = "Game"
	colPlatform = "Platform"
	colNetwork  = "Network"

	// crashCountSubstr selects the count source column by case-insensitive
	// substring match, first header in declaration order wins.
	crashCountSubstr = "crash count"
)

// headerCleaner strips the embedded line breaks that multi-line spreadsheet
// headers export as.
var headerCleaner = strings.NewReplacer("\n", " ", "\r", " ")

// NormalizeTable converts a raw table into the canonical record set.
//
// Header names are cleaned once for the whole table. When a Date column
// exists, every row's date is parsed and rows that fail are excluded from the
// output (counted in Result.Dropped); without a Date column all rows are
// kept. Per-field extraction degrades to safe defaults and never aborts the
// batch. Classification runs against the original raw cells, before any
// per-field normalization.
func NormalizeTable(table Table) Result {
	columns := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		columns[i] = strings.TrimSpace(headerCleaner.Replace(col))
	}
	rows := rekeyRows(table.Columns, columns, table.Rows)

	hasDate := columnIndex(columns, colDate) >= 0
	countCol := crashCountColumn(columns)
	titler := cases.Title(language.Und)
	now := clock.Now()

	records := make([]NormalizedRecord, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		rec := NormalizedRecord{ProcessedAt: now}

		if hasDate {
			date, err := ParseDate(row[colDate])
			if err != nil {
				dropped++
				continue
			}
			rec.Date = date
			rec.HasDate = true
			rec.YearMonth = date.Format("2006-01")
		}

		rec.Game = normalizeName(titler, row[colGame])
		rec.Platform = normalizePlatform(titler, row[colPlatform])
		if countCol != "" {
			rec.CrashCount = ExtractCrashCount(row[countCol])
		}
		rec.CrashType = ClassifyCrashType(columns, row)
		rec.NetworkName = Unknown
		if v := strings.TrimSpace(row[colNetwork]); v != "" {
			rec.NetworkName = v
		}
		rec.Extra = passthrough(columns, countCol, row)

		records = append(records, rec)
	}

	return Result{Records: records, Columns: columns, Dropped: dropped}
}

// rekeyRows re-homes row values under the cleaned header names.
func rekeyRows(orig, cleaned []string, rows []RawRow) []RawRow {
	changed := false
	for i := range orig {
		if orig[i] != cleaned[i] {
			changed = true
			break
		}
	}
	if !changed {
		return rows
	}

	out := make([]RawRow, len(rows))
	for i, row := range rows {
		r := make(RawRow, len(row))
		for j, col := range orig {
			if v, ok := row[col]; ok {
				r[cleaned[j]] = v
			}
		}
		out[i] = r
	}
	return out
}

// normalizeName trims and title-cases a Game value, collapsing missing,
// blank, and the literal "Nan" (a stringified spreadsheet NaN) to Unknown.
func normalizeName(titler cases.Caser, raw string) string {
	name := titler.String(strings.TrimSpace(raw))
	if name == "" || name == "Nan" {
		return Unknown
	}
	return name
}

// normalizePlatform applies the Game rules plus the iOS canonicalization:
// title-casing folds every spelling of "ios" to "Ios", which maps to "iOS".
func normalizePlatform(titler cases.Caser, raw string) string {
	platform := normalizeName(titler, raw)
	if platform == "Ios" {
		return "iOS"
	}
	return platform
}

// crashCountColumn returns the first header containing "crash count",
// case-insensitive, or "" when no such column exists.
func crashCountColumn(columns []string) string {
	for _, col := range columns {
		if strings.Contains(strings.ToLower(col), crashCountSubstr) {
			return col
		}
	}
	return ""
}

// passthrough collects the cells of columns with no assigned semantics.
func passthrough(columns []string, countCol string, row RawRow) map[string]string {
	var extra map[string]string
	for _, col := range columns {
		switch col {
		case colDate, colGame, colPlatform, colNetwork, countCol:
			continue
		}
		v, ok := row[col]
		if !ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[col] = v
	}
	return extra
}

func columnIndex(columns []string, name string) int {
	for i, col := range columns {
		if col == name {
			return i
		}
	}
	return -1
}
