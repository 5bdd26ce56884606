// Package csvio decodes raw crash-report CSVs into domain tables and encodes
// normalized records back to CSV for export.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/crashdeck/crash-data-service/internal/domain"
)

// ErrEmptyInput reports a source with no header row.
var ErrEmptyInput = errors.New("empty input: header row is required")

// exportDateLayout renders export dates as YYYY-MM-DD.
const exportDateLayout = "2006-01-02"

// Decode reads delimited UTF-8 text with a mandatory header row into a raw
// table. Rows may be ragged; missing trailing cells are simply absent from
// the row. A leading byte-order mark on the header is stripped.
func Decode(r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return domain.Table{}, ErrEmptyInput
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	var rows []domain.RawRow
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}

		row := make(domain.RawRow, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		rows = append(rows, row)
	}

	return domain.Table{Columns: header, Rows: rows}, nil
}

// canonicalColumns is the fixed leading header of every export.
var canonicalColumns = []string{"Date", "Game", "Platform", "Crash Count", "Crash Type", "Network"}

// Encode writes normalized records as CSV: the canonical columns first, then
// any extra pass-through columns present on the records, sorted by name.
// Dates render as YYYY-MM-DD; records without a date leave the cell blank.
func Encode(w io.Writer, records []domain.NormalizedRecord) error {
	extras := extraColumns(records)
	header := append(append([]string{}, canonicalColumns...), extras...)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		date := ""
		if rec.HasDate {
			date = rec.Date.Format(exportDateLayout)
		}
		row := []string{
			date,
			rec.Game,
			rec.Platform,
			strconv.Itoa(rec.CrashCount),
			string(rec.CrashType),
			rec.NetworkName,
		}
		for _, col := range extras {
			row = append(row, rec.Extra[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// extraColumns collects the union of pass-through column names across
// records. Names matching a canonical column are skipped; a raw "Crash Type"
// source column must not duplicate the canonical one in the header.
func extraColumns(records []domain.NormalizedRecord) []string {
	canonical := make(map[string]struct{}, len(canonicalColumns))
	for _, col := range canonicalColumns {
		canonical[col] = struct{}{}
	}

	seen := make(map[string]struct{})
	for _, rec := range records {
		for col := range rec.Extra {
			if _, ok := canonical[col]; ok {
				continue
			}
			seen[col] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
